package transform

import (
	"log/slog"
	"time"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
)

// Target is the document store as seen by the controller.
type Target interface {
	Element(id string) (document.Element, bool)
	MoveElement(id string, pos geometry.Position)
	ResizeElement(id string, size geometry.Size)
	RotateElement(id string, rotation float64)
	UpdateElement(el document.Element)
}

type Options struct {
	Grid         geometry.Grid
	Container    geometry.Size
	Throttle     time.Duration
	RotationSnap float64
	Logger       *slog.Logger
}

// Controller drives the gesture state machine for one element and applies
// its commits to the store.
type Controller struct {
	id      string
	target  Target
	view    Projector
	opts    Options
	gesture Gesture
	logger  *slog.Logger
}

func NewController(elementID string, target Target, view Projector, opts Options) *Controller {
	if opts.Throttle <= 0 {
		opts.Throttle = DefaultThrottle
	}
	if opts.RotationSnap <= 0 {
		opts.RotationSnap = geometry.DefaultRotationSnap
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{id: elementID, target: target, view: view, opts: opts, logger: logger}
}

func (c *Controller) ElementID() string { return c.id }

func (c *Controller) State() State { return c.gesture.State }

// SetGrid changes snapping for subsequent events.
func (c *Controller) SetGrid(g geometry.Grid) { c.opts.Grid = g }

// Handle feeds one event through the state machine. If the element has
// disappeared from the store the gesture is dropped.
func (c *Controller) Handle(ev Event) State {
	el, ok := c.target.Element(c.id)
	if !ok {
		if c.gesture.State != Idle {
			c.logger.Debug("transform: element vanished mid-gesture", "element", c.id, "state", c.gesture.State)
		}
		c.gesture = Gesture{}
		return Idle
	}

	prev := c.gesture.State
	next, commits := Step(c.gesture, ev, Env{
		Element:      el,
		View:         c.view,
		Grid:         c.opts.Grid,
		Container:    c.opts.Container,
		Throttle:     c.opts.Throttle,
		RotationSnap: c.opts.RotationSnap,
	})
	c.gesture = next
	for _, cm := range commits {
		c.apply(cm)
	}
	if prev != next.State {
		c.logger.Debug("transform: state change", "element", c.id, "from", prev, "to", next.State, "commits", len(commits))
	}
	return next.State
}

func (c *Controller) apply(cm Commit) {
	switch m := cm.(type) {
	case Move:
		c.target.MoveElement(m.ID, m.Position)
	case Resize:
		c.target.ResizeElement(m.ID, m.Size)
	case Rotate:
		c.target.RotateElement(m.ID, m.Rotation)
	case Update:
		c.target.UpdateElement(m.Element)
	}
}
