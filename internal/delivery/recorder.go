package delivery

import (
	"context"
	"sync"
)

// Delivery is one captured call to Recorder.Deliver
type Delivery struct {
	Content  []byte
	MIMEType string
	Filename string
}

// Recorder keeps deliveries in memory. Err, when set, is returned from
// Deliver instead of recording.
type Recorder struct {
	Err error

	mu         sync.Mutex
	deliveries []Delivery
}

// Deliver copies content and records the call
func (r *Recorder) Deliver(_ context.Context, content []byte, mimeType, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.deliveries = append(r.deliveries, Delivery{
		Content:  append([]byte(nil), content...),
		MIMEType: mimeType,
		Filename: filename,
	})
	return nil
}

// Deliveries returns a copy of the recorded deliveries
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivery(nil), r.deliveries...)
}

// Last returns the most recent delivery and whether there was one
func (r *Recorder) Last() (Delivery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.deliveries) == 0 {
		return Delivery{}, false
	}
	return r.deliveries[len(r.deliveries)-1], true
}
