package engine

import "fmt"

// Kind is the shape of a cell: which entry sides route to which exit sides
type Kind int

const (
	Type0 Kind = iota // no connection
	Type1
	Type2
	Type3
	Type4
	Type5
	Type6
	Type7
	Type8
	Type9
	Type10
	Type11
	Type12
	Type13
	Exit

	kindCount
)

// Routing maps an entry side to its exit side, noDirection when closed
type Routing [4]Direction

func route(pairs ...Direction) Routing {
	r := Routing{noDirection, noDirection, noDirection, noDirection}
	for i := 0; i+1 < len(pairs); i += 2 {
		r[pairs[i]] = pairs[i+1]
	}
	return r
}

var canonicalRoutes = [kindCount]Routing{
	Type0:  route(),
	Type1:  route(Up, Down, Right, Down, Left, Down),
	Type2:  route(Right, Left, Left, Right),
	Type3:  route(Up, Down),
	Type4:  route(Up, Left, Right, Down),
	Type5:  route(Up, Right, Left, Down),
	Type6:  route(Left, Right, Right, Left),
	Type7:  route(Up, Down, Right, Down),
	Type8:  route(Left, Down, Right, Down),
	Type9:  route(Up, Down, Left, Down),
	Type10: route(Up, Left),
	Type11: route(Up, Right),
	Type12: route(Right, Down),
	Type13: route(Left, Down),
	Exit:   route(Up, Down, Left, Down, Right, Down),
}

// clockwise gives the kind a shape becomes after one quarter turn right.
// Kinds 0, 1 and Exit do not change.
var clockwise = [kindCount]Kind{
	Type0:  Type0,
	Type1:  Type1,
	Type2:  Type3,
	Type3:  Type2,
	Type4:  Type5,
	Type5:  Type4,
	Type6:  Type7,
	Type7:  Type8,
	Type8:  Type9,
	Type9:  Type6,
	Type10: Type11,
	Type11: Type12,
	Type12: Type13,
	Type13: Type10,
	Exit:   Exit,
}

// Valid reports whether k is a known shape
func (k Kind) Valid() bool {
	return k >= Type0 && k < kindCount
}

func (k Kind) String() string {
	switch {
	case k == Exit:
		return "EXIT"
	case k.Valid():
		return fmt.Sprintf("TYPE%d", int(k))
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Turned returns the kind after quarter quarter-turns clockwise
func (k Kind) Turned(quarters int) Kind {
	if !k.Valid() {
		return Type0
	}
	quarters = ((quarters % 4) + 4) % 4
	for i := 0; i < quarters; i++ {
		k = clockwise[k]
	}
	return k
}

// Routes returns the canonical routing of the kind
func (k Kind) Routes() Routing {
	if !k.Valid() {
		return canonicalRoutes[Type0]
	}
	return canonicalRoutes[k]
}

// Connector is a single cell of the maze. Its shape is stored as a base kind
// plus a number of clockwise quarter turns, so the routing is always derived
// from one consistent value.
type Connector struct {
	pos         Position
	base        Kind
	orientation int
	locked      bool
	occupied    bool
}

// NewConnector creates a connector in its canonical orientation
func NewConnector(pos Position, kind Kind, locked bool) *Connector {
	if !kind.Valid() {
		kind = Type0
	}
	return &Connector{pos: pos, base: kind, locked: locked}
}

// Position returns the cell coordinates
func (c *Connector) Position() Position { return c.pos }

// Base returns the kind the connector was created with
func (c *Connector) Base() Kind { return c.base }

// Kind returns the current shape after rotations
func (c *Connector) Kind() Kind { return c.base.Turned(c.orientation) }

// Orientation returns the number of clockwise quarter turns from canonical
func (c *Connector) Orientation() int { return c.orientation }

// Routing returns the current entry to exit table
func (c *Connector) Routing() Routing { return c.Kind().Routes() }

func (c *Connector) Locked() bool { return c.locked }
func (c *Connector) Lock()        { c.locked = true }
func (c *Connector) Unlock()      { c.locked = false }

// Occupied reports whether the player is standing on the cell
func (c *Connector) Occupied() bool          { return c.occupied }
func (c *Connector) SetOccupied(player bool) { c.occupied = player }

// Dead reports whether no orientation of the shape has any route
func (c *Connector) Dead() bool {
	return c.base == Type0
}

// Reset restores the canonical orientation
func (c *Connector) Reset() {
	c.orientation = 0
}

// restore puts the connector back to a previously observed orientation
func (c *Connector) restore(orientation int) {
	c.orientation = orientation
}

func (c *Connector) turn(quarters int) bool {
	if c.locked {
		return false
	}
	c.orientation = (((c.orientation + quarters) % 4) + 4) % 4
	return true
}

// RotateLeft turns the cell a quarter counter-clockwise. Locked cells are left untouched.
func (c *Connector) RotateLeft() bool { return c.turn(-1) }

// RotateRight turns the cell a quarter clockwise. Locked cells are left untouched.
func (c *Connector) RotateRight() bool { return c.turn(1) }

// Rotate180 turns the cell half way. Locked cells are left untouched.
func (c *Connector) Rotate180() bool { return c.turn(2) }

// Rotate applies a single action
func (c *Connector) Rotate(a Action) bool {
	if a == RotateRight {
		return c.RotateRight()
	}
	return c.RotateLeft()
}

// HasEntry reports whether a mover entering from d can pass through
func (c *Connector) HasEntry(d Direction) bool {
	_, ok := c.Follow(d)
	return ok
}

// Follow returns the exit side for a mover entering from d
func (c *Connector) Follow(d Direction) (Direction, bool) {
	if !d.Valid() {
		return noDirection, false
	}
	out := c.Routing()[d]
	return out, out != noDirection
}

// HalfTurnInvariant reports whether a 180 degree turn leaves the routing unchanged
func (c *Connector) HalfTurnInvariant() bool {
	return c.base.Routes() == c.base.Turned(2).Routes()
}

// MirrorInvariant reports whether a left turn and a right turn give the same routing
func (c *Connector) MirrorInvariant() bool {
	return c.base.Turned(-1).Routes() == c.base.Turned(1).Routes()
}

// Code renders the current kind as a level code, negative when locked
func (c *Connector) Code() string {
	k := c.Kind()
	if k == Exit {
		return "X"
	}
	if c.locked && k != Type0 {
		return fmt.Sprintf("-%d", int(k))
	}
	return fmt.Sprintf("%d", int(k))
}
