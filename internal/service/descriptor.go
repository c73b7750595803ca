package service

import (
	"github.com/FahadBinHussain/Xenovate/internal/normalize"
	"github.com/FahadBinHussain/Xenovate/internal/operation"
	"github.com/FahadBinHussain/Xenovate/internal/prompt"
)

// descriptor is what differs between the four operations: how the prompt is
// built and how the reply is shaped into a result. Field defaults live in
// the normalizer for each shape.
type descriptor struct {
	prompt    func(req operation.CodeRequest) string
	normalize func(raw string, req operation.CodeRequest) operation.Result
}

func newDescriptor(op operation.Operation) descriptor {
	return descriptor{
		prompt: func(req operation.CodeRequest) string {
			return prompt.Build(op, req)
		},
		normalize: func(raw string, req operation.CodeRequest) operation.Result {
			return normalize.Normalize(op, raw, req)
		},
	}
}

func defaultDescriptors() map[operation.Operation]descriptor {
	table := make(map[operation.Operation]descriptor, len(operation.All))
	for _, op := range operation.All {
		table[op] = newDescriptor(op)
	}
	return table
}
