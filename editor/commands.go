package editor

import (
	stdmath "math"

	"fortio.org/log"

	"grid-editor/assets"
	"grid-editor/math"
	"grid-editor/scene"
)

// Transform steps applied by the selection commands.
const (
	RotateStep = stdmath.Pi / 4
	MoveStep   = 10
)

// ModelLoader starts an asynchronous model load.
type ModelLoader interface {
	LoadModel(e assets.Entry) error
}

// CommandContext is what commands act on.
type CommandContext struct {
	Scene     *scene.Scene
	Selection *Selection
	Loader    ModelLoader
}

// Command is a menu action. Commands that need a selection do nothing
// without one.
type Command interface {
	Execute(ctx *CommandContext)
	Description() string
}

// RotateCommand yaws the selection about its own origin.
type RotateCommand struct {
	Angle float32
	Label string
}

func (c RotateCommand) Execute(ctx *CommandContext) {
	n := ctx.Selection.Node()
	if n == nil {
		return
	}
	n.Rotate(math.Vec3Up, c.Angle)
	log.LogVf("%s %s: yaw %.4f", c.Label, n.Name, n.Transform.Yaw())
}

func (c RotateCommand) Description() string { return c.Label }

// MoveCommand translates the selection on the ground plane.
type MoveCommand struct {
	Delta math.Vec3
	Label string
}

func (c MoveCommand) Execute(ctx *CommandContext) {
	n := ctx.Selection.Node()
	if n == nil {
		return
	}
	n.Translate(c.Delta)
	log.LogVf("%s %s: position %+v", c.Label, n.Name, n.Transform.Position)
}

func (c MoveCommand) Description() string { return c.Label }

// DeleteCommand removes the selection from the scene but leaves it
// selected. Only top-level models and the logo can be removed.
type DeleteCommand struct{}

func (DeleteCommand) Execute(ctx *CommandContext) {
	n := ctx.Selection.Node()
	if n == nil || n.Kind == scene.KindGrid {
		return
	}
	if ctx.Scene.RemoveNode(n) {
		log.Infof("Removed %s from the scene", n.Name)
	}
}

func (DeleteCommand) Description() string { return "Delete" }

type ClearSelectionCommand struct{}

func (ClearSelectionCommand) Execute(ctx *CommandContext) {
	ctx.Selection.Clear()
}

func (ClearSelectionCommand) Description() string { return "Clear Selection" }

// LoadModelCommand requests a model; it appears on a later frame.
type LoadModelCommand struct {
	Entry assets.Entry
}

func (c LoadModelCommand) Execute(ctx *CommandContext) {
	if ctx.Loader == nil {
		return
	}
	if err := ctx.Loader.LoadModel(c.Entry); err != nil {
		log.Errf("Error loading model %s: %v", c.Entry.Path, err)
	}
}

func (c LoadModelCommand) Description() string { return c.Entry.Label }

var (
	RotateLeft  = RotateCommand{Angle: RotateStep, Label: "Rotate Left"}
	RotateRight = RotateCommand{Angle: -RotateStep, Label: "Rotate Right"}
	MoveUp      = MoveCommand{Delta: math.NewVec3(0, 0, -MoveStep), Label: "Move Up"}
	MoveDown    = MoveCommand{Delta: math.NewVec3(0, 0, MoveStep), Label: "Move Down"}
	MoveLeft    = MoveCommand{Delta: math.NewVec3(-MoveStep, 0, 0), Label: "Move Left"}
	MoveRight   = MoveCommand{Delta: math.NewVec3(MoveStep, 0, 0), Label: "Move Right"}
)

// SelectionCommands is the menu shown while something is selected.
func SelectionCommands() []Command {
	return []Command{
		ClearSelectionCommand{},
		RotateLeft,
		RotateRight,
		MoveUp,
		MoveDown,
		MoveLeft,
		MoveRight,
		DeleteCommand{},
	}
}

// LoadCommands is the menu shown with nothing selected.
func LoadCommands(catalog []assets.Entry) []Command {
	out := make([]Command, len(catalog))
	for i, e := range catalog {
		out[i] = LoadModelCommand{Entry: e}
	}
	return out
}
