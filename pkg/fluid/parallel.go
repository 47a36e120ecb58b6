package fluid

import (
	"runtime"
	"sync"
)

// parallelRows calls fn for every row in [start,end). With parallel set the
// rows are cut into one contiguous band per CPU; fn may then write only to
// its own row.
func parallelRows(parallel bool, start, end int, fn func(r int)) {
	rows := end - start
	if rows <= 0 {
		return
	}
	bands := 1
	if parallel {
		bands = min(runtime.GOMAXPROCS(0), rows)
	}
	if bands == 1 {
		for r := start; r < end; r++ {
			fn(r)
		}
		return
	}

	height := (rows + bands - 1) / bands
	var wg sync.WaitGroup
	for top := start; top < end; top += height {
		bottom := min(top+height, end)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := top; r < bottom; r++ {
				fn(r)
			}
		}()
	}
	wg.Wait()
}
