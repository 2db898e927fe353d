package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fortio.org/log"
	"golang.org/x/sync/errgroup"

	"grid-editor/scene"
)

// ErrClosed is returned for requests made after Close.
var ErrClosed = errors.New("loader closed")

type RequestKind int

const (
	RequestModel RequestKind = iota
	RequestLogo
)

func (k RequestKind) String() string {
	if k == RequestLogo {
		return "logo"
	}
	return "model"
}

type Request struct {
	Kind  RequestKind
	Entry Entry
}

// Result carries a detached node built by a worker, or the error that
// aborted the load.
type Result struct {
	Request Request
	Node    *scene.Node
	Err     error
}

type LoaderOptions struct {
	Root    string
	Workers int
	Queue   int // request and result buffer size
	Model   ModelOptions
	Logo    LogoOptions
}

// Loader decodes assets on worker goroutines. Workers never touch the scene:
// results are picked up by the owner with Drain and applied on its own
// goroutine. After Close, outstanding work is abandoned and its results are
// dropped.
type Loader struct {
	opts LoaderOptions

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu       sync.Mutex
	closed   bool
	requests chan Request
	results  chan Result
	inflight sync.WaitGroup
	done     chan struct{}

	// decoders; replaced in tests
	loadModel func(path string) (*scene.GLTFResult, error)
	loadImage func(path string) (*scene.Texture, error)
}

func NewLoader(ctx context.Context, opts LoaderOptions) *Loader {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Queue < 1 {
		opts.Queue = 64
	}
	ctx, cancel := context.WithCancel(ctx)
	l := &Loader{
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		requests: make(chan Request, opts.Queue),
		results:  make(chan Result, opts.Queue),
		done:     make(chan struct{}),

		loadModel: scene.LoadGLTF,
		loadImage: scene.LoadTexture,
	}
	l.group.SetLimit(opts.Workers)
	go l.dispatch()
	return l
}

// dispatch feeds queued requests to the worker group; Go blocks while all
// workers are busy, which keeps Submit non-blocking for the caller.
func (l *Loader) dispatch() {
	defer close(l.done)
	for req := range l.requests {
		if l.ctx.Err() != nil {
			l.inflight.Done()
			continue
		}
		req := req
		l.group.Go(func() error {
			defer l.inflight.Done()
			res := l.load(req)
			select {
			case l.results <- res:
			case <-l.ctx.Done():
			}
			return nil
		})
	}
}

// load decodes one request. A decoder panic on a hostile file becomes the
// result's error instead of taking the process down with the worker.
func (l *Loader) load(req Request) (res Result) {
	res = Result{Request: req}
	defer func() {
		if r := recover(); r != nil {
			res = Result{Request: req, Err: fmt.Errorf("load %s %s: decoder panic: %v", req.Kind, req.Entry.Path, r)}
		}
	}()
	path := Resolve(l.opts.Root, req.Entry.Path)
	log.LogVf("Loading %s %s", req.Kind, path)

	switch req.Kind {
	case RequestLogo:
		tex, err := l.loadImage(path)
		if err != nil {
			res.Err = fmt.Errorf("load logo %s: %w", req.Entry.Path, err)
			return res
		}
		logo := l.opts.Logo
		logo.Position = req.Entry.Position
		res.Node = BuildLogo(tex, logo)
	default:
		model, err := l.loadModel(path)
		if err != nil {
			res.Err = fmt.Errorf("load model %s: %w", req.Entry.Path, err)
			return res
		}
		res.Node = BuildModelGroup(model, req.Entry.Position, l.opts.Model)
	}
	return res
}

// Submit queues a request without blocking on the load itself.
func (l *Loader) Submit(req Request) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.inflight.Add(1)
	select {
	case l.requests <- req:
		return nil
	default:
		l.inflight.Done()
		return fmt.Errorf("load queue full, dropping %s", req.Entry.Path)
	}
}

// LoadModel is Submit for a model entry.
func (l *Loader) LoadModel(e Entry) error {
	return l.Submit(Request{Kind: RequestModel, Entry: e})
}

// LoadLogo is Submit for the logo image.
func (l *Loader) LoadLogo(e Entry) error {
	return l.Submit(Request{Kind: RequestLogo, Entry: e})
}

// Drain returns every finished result without waiting.
func (l *Loader) Drain() []Result {
	var out []Result
	for {
		select {
		case r := <-l.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Wait blocks until every submitted request has finished and returns all
// results not yet drained. It keeps draining while it waits, so any number
// of outstanding loads can finish.
func (l *Loader) Wait() []Result {
	idle := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(idle)
	}()
	var out []Result
	for {
		select {
		case r := <-l.results:
			out = append(out, r)
		case <-idle:
			return append(out, l.Drain()...)
		}
	}
}

// Close cancels outstanding loads, waits for the workers to exit and
// discards results nobody drained. It is safe to call more than once.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.requests)
	l.mu.Unlock()

	l.cancel()
	<-l.done
	_ = l.group.Wait()
	if dropped := len(l.Drain()); dropped > 0 {
		log.Infof("Discarded %d asset results after shutdown", dropped)
	}
}
