package state

import (
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// EditAction represents an undoable edit of the instance.
type EditAction interface {
	Do(inst *core.Instance)
	Undo(inst *core.Instance)
	Description() string
}

// EditMode represents the current editing mode.
type EditMode int

const (
	ModeView     EditMode = iota // Select agents, drag starts
	ModeObstacle                 // Click toggles obstacles
)

// EditState manages interactive editing state.
type EditState struct {
	SelectedAgents map[core.AgentID]bool

	// Drag state
	Dragging  bool
	DragAgent core.AgentID
	DragFrom  core.Coord

	undoStack []EditAction
	redoStack []EditAction

	Mode EditMode
}

// NewEditState creates a new edit state.
func NewEditState() *EditState {
	return &EditState{
		SelectedAgents: make(map[core.AgentID]bool),
		Mode:           ModeView,
	}
}

// SelectAgent toggles agent selection.
func (e *EditState) SelectAgent(id core.AgentID, multi bool) {
	if !multi {
		e.ClearSelection()
	}
	e.SelectedAgents[id] = !e.SelectedAgents[id]
	if !e.SelectedAgents[id] {
		delete(e.SelectedAgents, id)
	}
}

// ClearSelection clears all selections.
func (e *EditState) ClearSelection() {
	e.SelectedAgents = make(map[core.AgentID]bool)
}

// StartDrag begins dragging the start of an agent.
func (e *EditState) StartDrag(a core.AgentID, from core.Coord) {
	e.Dragging = true
	e.DragAgent = a
	e.DragFrom = from
}

// EndDrag ends a drag operation.
func (e *EditState) EndDrag() {
	e.Dragging = false
}

// Execute performs an action and adds it to undo stack.
func (e *EditState) Execute(action EditAction, inst *core.Instance) {
	action.Do(inst)
	e.undoStack = append(e.undoStack, action)
	e.redoStack = nil
}

// Undo pops the last action. The caller reverts it.
func (e *EditState) Undo() EditAction {
	if len(e.undoStack) == 0 {
		return nil
	}
	action := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]
	e.redoStack = append(e.redoStack, action)
	return action
}

// Redo pops the last undone action. The caller reapplies it.
func (e *EditState) Redo() EditAction {
	if len(e.redoStack) == 0 {
		return nil
	}
	action := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]
	e.undoStack = append(e.undoStack, action)
	return action
}

// CanUndo returns true if there are actions to undo.
func (e *EditState) CanUndo() bool {
	return len(e.undoStack) > 0
}

// CanRedo returns true if there are actions to redo.
func (e *EditState) CanRedo() bool {
	return len(e.redoStack) > 0
}

// Occupied reports whether a start or goal marker sits on c.
func Occupied(inst *core.Instance, c core.Coord) bool {
	for _, m := range inst.Starts {
		if m.Coord == c {
			return true
		}
	}
	for _, m := range inst.Goals {
		if m.Coord == c {
			return true
		}
	}
	return false
}

// ToggleObstacleAction flips a cell between free and blocked.
type ToggleObstacleAction struct {
	Cell core.Coord
}

func (a *ToggleObstacleAction) Do(inst *core.Instance) {
	inst.Grid[a.Cell.Row][a.Cell.Col] = !inst.Grid[a.Cell.Row][a.Cell.Col]
}

func (a *ToggleObstacleAction) Undo(inst *core.Instance) {
	a.Do(inst)
}

func (a *ToggleObstacleAction) Description() string {
	return "Toggle obstacle"
}

// MoveStartAction moves the start cell of an agent.
type MoveStartAction struct {
	Agent    core.AgentID
	From, To core.Coord
}

func (a *MoveStartAction) Do(inst *core.Instance) {
	inst.Starts[a.Agent].Coord = a.To
}

func (a *MoveStartAction) Undo(inst *core.Instance) {
	inst.Starts[a.Agent].Coord = a.From
}

func (a *MoveStartAction) Description() string {
	return "Move start"
}
