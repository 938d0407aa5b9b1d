package pipeline

// BlockOptions tunes a block. The zero value is not usable; blocks start from
// defaultOptions.
type BlockOptions struct {
	// Name labels faults raised by the block.
	Name string
}

type Option func(*BlockOptions)

func defaultOptions() BlockOptions {
	return BlockOptions{Name: "block"}
}

func WithName(name string) Option {
	return func(o *BlockOptions) {
		if name != "" {
			o.Name = name
		}
	}
}

func buildOptions(opts []Option) BlockOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
