package binfield

// StructProto is RecordProto with anonymous (unnamed) fields permitted: a
// Struct is a Record whose field list may splice in nested layouts without
// introducing an intermediate name, the schema's "Struct" type as distinct
// from plain "Record".
type StructProto struct {
	RecordProto
}

func (p *StructProto) Sanitize() error {
	p.AllowAnonymous = true
	return p.RecordProto.Sanitize()
}

func (p *StructProto) Instantiate(initial any, parent Field) (Field, error) {
	p.AllowAnonymous = true
	return p.RecordProto.Instantiate(initial, parent)
}
