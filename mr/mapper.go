package mr

// Map returns the collection of all pairs produced by applying mapf
// to each pair of c.  Shard i of the result holds the output of shard
// i of c.  mapf runs lazily, when the result is consumed; an error it
// returns (or a panic it raises) fails that consumption with a
// *UserFunctionError.
func Map[K1 comparable, V1 any, K2 comparable, V2 any](ctx *Context, c *Collection[K1, V1], mapf MapT[K1, V1, K2, V2]) (*Collection[K2, V2], error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	out := &Collection[K2, V2]{srcs: make([]source[K2, V2], c.NShard())}
	for i, src := range c.srcs {
		out.srcs[i] = mapSource(i, src, mapf)
	}
	return out, nil
}

func mapSource[K1 comparable, V1 any, K2 comparable, V2 any](shard int, src source[K1, V1], mapf MapT[K1, V1, K2, V2]) source[K2, V2] {
	return func(emit EmitT[K2, V2]) error {
		return src(func(kv KeyValue[K1, V1]) error {
			kvs, err := protect(func() ([]KeyValue[K2, V2], error) { return mapf(kv.Key, kv.Value) })
			if err != nil {
				return &UserFunctionError{Op: "map", Shard: shard, Pairs: []string{kv.String()}, Err: err}
			}
			for _, kv2 := range kvs {
				if err := emit(kv2); err != nil {
					return err
				}
			}
			return nil
		})
	}
}
