// The driver package runs the question battery, writes each answer
// to the answer log, and keeps going past questions that aren't
// implemented.  Any other error aborts the run.
package driver

import (
	"errors"
	"fmt"
	"io"
	"time"

	db "kvmr/debug"
	"kvmr/mr"
)

const NOTIMPL = "Not Implemented"

var ErrNotImplemented = errors.New("not implemented")

type Input = *mr.Collection[int, int]

type Question struct {
	Name string
	// Run gets the collection returned by the battery's Load (or an
	// empty one).  Questions that make their own input ignore it.
	Run func(in Input) (interface{}, error)
}

type Battery struct {
	Load      func() (Input, error)
	Questions []Question
	// Empty returns the input used when Load isn't implemented.
	Empty func() (Input, error)
}

type Driver struct {
	log        *AnswerLog
	out        io.Writer
	unfinished int
	res        *Results
}

func NewDriver(log *AnswerLog, out io.Writer) *Driver {
	return &Driver{
		log: log,
		out: out,
		res: NewResults(),
	}
}

func (d *Driver) Unfinished() int {
	return d.unfinished
}

func (d *Driver) Results() *Results {
	return d.res
}

// LogAnswer runs f and appends its answer under name.  If f isn't
// implemented, it logs NOTIMPL instead and counts an unfinished
// question.  Other errors are returned without logging an answer.
func (d *Driver) LogAnswer(name string, f func() (interface{}, error)) error {
	start := time.Now()
	answer, err := f()
	if err != nil {
		if !errors.Is(err, ErrNotImplemented) {
			db.DPrintf(db.ERROR, "%v err %v", name, err)
			return err
		}
		fmt.Fprintf(d.out, "Warning: %s not implemented.\n", name)
		d.unfinished += 1
		return d.log.Append(name, NOTIMPL)
	}
	d.res.Append(name, time.Since(start))
	s := fmt.Sprint(answer)
	fmt.Fprintf(d.out, "%s answer: %s\n", name, s)
	if err := d.log.Append(name, s); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Answer saved to %s\n", d.log.Pathname())
	db.DPrintf(db.DRIVER, "%v done in %v", name, time.Since(start))
	return nil
}

// Run truncates the answer log, loads the input, runs every question
// in order, and returns "<n> unfinished questions".
func (d *Driver) Run(b *Battery) (interface{}, error) {
	if err := d.log.Truncate(); err != nil {
		return nil, err
	}
	d.unfinished = 0
	in, err := b.Load()
	if err != nil {
		if !errors.Is(err, ErrNotImplemented) {
			return nil, err
		}
		fmt.Fprintf(d.out, "Welcome! Implement the input loader to get started.\n")
		if in, err = b.Empty(); err != nil {
			return nil, err
		}
	}
	for _, q := range b.Questions {
		q := q
		if err := d.LogAnswer(q.Name, func() (interface{}, error) { return q.Run(in) }); err != nil {
			return nil, err
		}
	}
	if d.unfinished > 0 {
		fmt.Fprintf(d.out, "Warning: there are unfinished questions.\n")
	}
	return fmt.Sprintf("%d unfinished questions", d.unfinished), nil
}
