package fs

import (
	"bufio"
	"errors"
	"os"
)

// Output is a buffered, line-oriented output file that is either committed
// or discarded as a whole.
type Output struct {
	fsys FileSystem
	path string
	f    File
	w    *bufio.Writer
	done bool
}

// CreateOutput truncates or creates path.
func CreateOutput(fsys FileSystem, path string) (*Output, error) {
	fsys = Or(fsys)
	f, err := Create(fsys, path)
	if err != nil {
		return nil, err
	}
	return &Output{fsys: fsys, path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file path.
func (o *Output) Path() string { return o.path }

// Write implements io.Writer.
func (o *Output) Write(p []byte) (int, error) {
	if o.done {
		return 0, os.ErrClosed
	}
	return o.w.Write(p)
}

// WriteLine writes s followed by a newline.
func (o *Output) WriteLine(s string) error {
	if o.done {
		return os.ErrClosed
	}
	if _, err := o.w.WriteString(s); err != nil {
		return err
	}
	return o.w.WriteByte('\n')
}

// Commit flushes, syncs and closes the file.
func (o *Output) Commit() error {
	if o.done {
		return nil
	}
	o.done = true
	if err := o.w.Flush(); err != nil {
		_ = o.f.Close()
		return err
	}
	if err := o.f.Sync(); err != nil {
		_ = o.f.Close()
		return err
	}
	return o.f.Close()
}

// Discard closes and removes the file. It is safe to call after Commit.
func (o *Output) Discard() error {
	var err error
	if !o.done {
		o.done = true
		err = o.f.Close()
	}
	return errors.Join(err, RemoveIfExists(o.fsys, o.path))
}
