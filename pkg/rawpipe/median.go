package rawpipe

// SelectMedian returns the median of a, the element of rank (len(a)-1)/2 in
// ascending order, using quickselect with median-of-three pivoting. a is
// reordered in place. a must be non-empty and free of NaNs.
func SelectMedian(a []float32) float32 {
	low, high := 0, len(a)-1
	median := (low + high) / 2
	for {
		if high <= low {
			return a[median]
		}
		if high == low+1 {
			if a[low] > a[high] {
				a[low], a[high] = a[high], a[low]
			}
			return a[median]
		}

		// Order low, middle and high so a[low] holds the pivot and
		// a[high] bounds the upward scan.
		middle := (low + high) / 2
		if a[middle] > a[high] {
			a[middle], a[high] = a[high], a[middle]
		}
		if a[low] > a[high] {
			a[low], a[high] = a[high], a[low]
		}
		if a[middle] > a[low] {
			a[middle], a[low] = a[low], a[middle]
		}
		a[middle], a[low+1] = a[low+1], a[middle]

		ll, hh := low+1, high
		for {
			ll++
			for a[low] > a[ll] {
				ll++
			}
			hh--
			for a[hh] > a[low] {
				hh--
			}
			if hh < ll {
				break
			}
			a[ll], a[hh] = a[hh], a[ll]
		}
		a[low], a[hh] = a[hh], a[low]

		if hh <= median {
			low = ll
		}
		if hh >= median {
			high = hh - 1
		}
	}
}

// Median9 returns the median of nine values, reordering them in place.
func Median9(a *[9]float32) float32 {
	return SelectMedian(a[:])
}

// MedianMergeGreen16 replaces both green samples of every interior tile with
// the median of the green averages (G1+G2)/2 over its 3x3 tile neighborhood.
// Red, blue and the outer ring of tiles are copied unchanged.
//
// Only green is filtered. Whether red and blue should get the same treatment
// is still open; see DESIGN.md.
func MedianMergeGreen16(pix []byte, width, height int) ([]byte, error) {
	if err := checkMosaic(pix, width, height, Depth16); err != nil {
		return nil, err
	}
	src := newPlane(pix, width, height, Depth16)
	dst := src.clone()

	tilesX, tilesY := width/2, height/2
	if tilesX < 3 || tilesY < 3 {
		return dst.pix, nil
	}
	forEachRow(tilesY-2, func(row int) {
		ty := row + 1
		var greens [9]float32
		for tx := 1; tx < tilesX-1; tx++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					g1 := src.tile(tx+dx, ty+dy, IndexG1)
					g2 := src.tile(tx+dx, ty+dy, IndexG2)
					greens[n] = float32(g1+g2) / 2
					n++
				}
			}
			m := uint32(Median9(&greens))
			dst.setTile(tx, ty, IndexG1, m)
			dst.setTile(tx, ty, IndexG2, m)
		}
	})
	return dst.pix, nil
}
