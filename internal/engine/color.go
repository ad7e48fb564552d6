package engine

// colorRef packs an RGB color in [0,1] into a Win32 COLORREF (0x00BBGGRR).
func colorRef(c [3]float32) uint32 {
	return uint32(channel(c[0])) | uint32(channel(c[1]))<<8 | uint32(channel(c[2]))<<16
}

func channel(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
