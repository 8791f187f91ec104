package fetch

import "io"

// Progress receives download progress events.
type Progress interface {
	// Start is called once the response headers arrive. total is -1 when
	// the server did not send Content-Length.
	Start(total int64)
	// Add reports n more bytes written.
	Add(n int)
	// Finish is called after the body has been fully copied.
	Finish()
}

// NopProgress discards progress events.
type NopProgress struct{}

func (NopProgress) Start(int64) {}
func (NopProgress) Add(int)     {}
func (NopProgress) Finish()     {}

// progressReader forwards read counts to a Progress.
type progressReader struct {
	r io.Reader
	p Progress
}

func (pr *progressReader) Read(b []byte) (int, error) {
	n, err := pr.r.Read(b)
	if n > 0 {
		pr.p.Add(n)
	}
	return n, err
}
