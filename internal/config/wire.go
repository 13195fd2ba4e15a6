package config

import (
	"fmt"

	"github.com/smoynes/forge/internal/register"
)

var kindNames = map[string]register.Kind{
	"GPR":    register.KindGPR,
	"FPR":    register.KindFPR,
	"Vector": register.KindVector,
	"CSR":    register.KindCSR,
	"PC":     register.KindPC,
}

var attrNames = map[string]register.Attr{
	"Read":     register.AttrRead,
	"Write":    register.AttrWrite,
	"HasValue": register.AttrHasValue,
}

// DefineInto populates arena with every register named in the description, in file order.
// Unknown kind or attribute names are a setup-time error: a typo'd register description should
// fail before generation starts, not produce a silently mis-typed register.
func (d *RegisterDescription) DefineInto(arena *register.Arena) error {
	for _, rc := range d.Registers {
		kind, ok := kindNames[rc.Kind]
		if !ok {
			return fmt.Errorf("config: register %q: unknown kind %q", rc.Name, rc.Kind)
		}

		attrs := register.Attr(0)

		for _, name := range rc.Attrs {
			attr, ok := attrNames[name]
			if !ok {
				return fmt.Errorf("config: register %q: unknown attribute %q", rc.Name, name)
			}

			attrs |= attr
		}

		if attrs == 0 {
			attrs = register.ReadWrite
		}

		arena.Define(rc.Name, kind, rc.Size, attrs)
	}

	return nil
}
