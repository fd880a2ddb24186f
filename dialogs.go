package main

// Dialog is a blocking notice or a yes/no question shown over the reader.
type Dialog struct {
	Message string
	Confirm bool
	answer  func(bool)
}

// DialogQueue implements the reader's modal protocol. Dialogs are shown one
// at a time in arrival order; input is captured until the head is answered.
// All methods run on the UI goroutine.
type DialogQueue struct {
	queue []*Dialog
}

// Alert queues a notice that only needs acknowledging.
func (q *DialogQueue) Alert(message string) {
	q.queue = append(q.queue, &Dialog{Message: message})
}

// Confirm queues a question; answer runs once the user decides.
func (q *DialogQueue) Confirm(message string, answer func(ok bool)) {
	q.queue = append(q.queue, &Dialog{Message: message, Confirm: true, answer: answer})
}

// Current returns the dialog on screen, or nil.
func (q *DialogQueue) Current() *Dialog {
	if len(q.queue) == 0 {
		return nil
	}
	return q.queue[0]
}

// Len returns the number of dialogs waiting, including the current one.
func (q *DialogQueue) Len() int { return len(q.queue) }

// Answer closes the current dialog. Alerts ignore ok.
func (q *DialogQueue) Answer(ok bool) {
	if len(q.queue) == 0 {
		return
	}
	d := q.queue[0]
	q.queue = q.queue[1:]
	if d.answer != nil {
		d.answer(ok && d.Confirm)
	}
}

// Clear dismisses everything; pending questions are answered with no.
func (q *DialogQueue) Clear() {
	for q.Current() != nil {
		q.Answer(false)
	}
}
