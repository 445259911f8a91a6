package bind_group_provider

// BufferWrite stages a queue write into the buffer a provider holds at a binding.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
