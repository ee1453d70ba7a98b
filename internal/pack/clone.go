package pack

func cloneOptions(opts []Option) []Option {
	if opts == nil {
		return nil
	}
	out := make([]Option, len(opts))
	copy(out, opts)
	return out
}

func cloneQuestion(q Question) Question {
	q.Options = cloneOptions(q.Options)
	return q
}

func cloneQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = cloneQuestion(q)
	}
	return out
}

// Clone returns a deep copy of p sharing no slices with it.
func (p Pack) Clone() Pack {
	p.Questions = cloneQuestions(p.Questions)
	return p
}

// Clone returns a deep copy of r sharing no slices with it.
func (r Record) Clone() Record {
	qs := make([]RecordQuestion, len(r.Questions))
	for i, q := range r.Questions {
		qs[i] = RecordQuestion{Text: q.Text, Options: cloneOptions(q.Options)}
	}
	r.Questions = qs
	return r
}
