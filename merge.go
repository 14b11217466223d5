package exceltmpl

// mergeSheet walks one sheet's template rows in order and drives the
// materializer against the destination writer. It keeps a cursor pair
// (srcRow, dstRow) starting at (0,0); a template row present in the row map
// advances the destination cursor by however many rows its data produced,
// anything else copies 1:1. Decisions are strictly local to one template row
// index; there is no look-ahead or look-behind.
//
// It returns the number of destination rows, which is always
// sum(len(repl[i]) if i in repl else 1) over template rows 0..rowCount-1.
func mergeSheet(ts *templateSheet, repl RowReplacements, w sheetWriter, ctx *evalContext) (int, error) {
	m := &materializer{ctx: ctx}
	dst := 0
	for src := 0; src < ts.rowCount; src++ {
		tr := ts.rowAt(src)

		dataRows, ok := repl[src]
		if !ok {
			// Plain copy. Sparse template gaps still consume one
			// destination row so later rows keep their offsets.
			if tr != nil {
				if _, err := m.materialize(tr, nil, w, dst); err != nil {
					return dst, mergeErr(ts.name, src, -1, err)
				}
			}
			dst++
			continue
		}

		// Present in the map: the row is replaced by exactly
		// len(dataRows) output rows. An empty sequence drops it.
		if len(dataRows) == 0 {
			continue
		}
		n, err := m.materialize(tr, dataRows, w, dst)
		if err != nil {
			return dst, mergeErr(ts.name, src, -1, err)
		}
		dst += n
	}

	if err := w.finalize(); err != nil {
		return dst, mergeErr(ts.name, -1, -1, err)
	}
	return dst, nil
}
