package binfield

import (
	"fmt"

	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/evalctx"
)

// ChoiceProto describes a field whose concrete type is selected at runtime by
// evaluating Selection and looking the result up in Choices. Reassigning the
// selector drops the current child and reconstructs a fresh default instance
// of the newly selected prototype.
type ChoiceProto struct {
	Name      string
	Selection evalctx.Expr
	Choices   map[any]Prototype

	sanitized bool
}

func (p *ChoiceProto) Sanitize() error {
	if p.Selection == nil {
		return fmt.Errorf("binstruct: choice %q: selection is required", p.Name)
	}
	if len(p.Choices) == 0 {
		return fmt.Errorf("binstruct: choice %q: at least one choice is required", p.Name)
	}
	for _, proto := range p.Choices {
		if err := proto.Sanitize(); err != nil {
			return err
		}
	}
	p.sanitized = true
	return nil
}

func (p *ChoiceProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}
	c := &Choice{proto: p}
	c.base = newBase(p.Name, map[string]evalctx.Expr{"selection": p.Selection})
	c.setParent(parent)
	if initial != nil {
		if err := c.Assign(initial); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Choice is a live instance of ChoiceProto. All Field operations on a Choice
// delegate to whichever child prototype the current selector value names.
type Choice struct {
	base
	proto   *ChoiceProto
	current Field
	key     any
}

func (c *Choice) Children() []Field {
	if c.current == nil {
		return nil
	}
	return []Field{c.current}
}

func (c *Choice) Method(name string) (any, bool, error) {
	if v, ok, err := c.baseMethod(name); ok || err != nil {
		return v, ok, err
	}
	if name == "selection" {
		return c.key, true, nil
	}
	if c.current != nil {
		return c.current.Method(name)
	}
	return nil, false, nil
}

func (c *Choice) selectKey() (any, error) {
	return evalctx.Eval(c.proto.Selection, c, nil)
}

// ensure resolves the selector and (re)builds the current child if the
// selector has changed or no child exists yet.
func (c *Choice) ensure() error {
	key, err := c.selectKey()
	if err != nil {
		return err
	}
	if c.current != nil && c.key == key {
		return nil
	}
	proto, ok := c.proto.Choices[key]
	if !ok {
		return fmt.Errorf("binstruct: choice %q: no case for selector %v", c.proto.Name, key)
	}
	child, err := proto.Instantiate(nil, c)
	if err != nil {
		return err
	}
	c.current = child
	c.key = key
	return nil
}

func (c *Choice) NumBits() uint64 {
	if err := c.ensure(); err != nil {
		return 0
	}
	return c.current.NumBits()
}

func (c *Choice) Clear() {
	if c.current != nil {
		c.current.Clear()
	}
}

func (c *Choice) IsClear() bool {
	if c.current == nil {
		return true
	}
	return c.current.IsClear()
}

func (c *Choice) Snapshot() any {
	if c.current == nil {
		return nil
	}
	return c.current.Snapshot()
}

func (c *Choice) Assign(v any) error {
	if err := c.ensure(); err != nil {
		return err
	}
	return c.current.Assign(v)
}

func (c *Choice) Read(s *bitio.Stream) error {
	if err := c.ensure(); err != nil {
		return err
	}
	if !isBitAligned(c.current) {
		if err := s.ResumeByteAlignment(); err != nil {
			return err
		}
	}
	if err := c.current.Read(s); err != nil {
		return err
	}
	return s.ResumeByteAlignment()
}

func (c *Choice) Write(s *bitio.Stream) error {
	if err := c.ensure(); err != nil {
		return err
	}
	if !isBitAligned(c.current) {
		if err := s.ResumeByteAlignment(); err != nil {
			return err
		}
	}
	if err := c.current.Write(s); err != nil {
		return err
	}
	return s.ResumeByteAlignment()
}
