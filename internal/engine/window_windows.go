//go:build windows

package engine

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	dwmwaUseImmersiveDarkMode = 20
	dwmwaBorderColor          = 34
	dwmwaCaptionColor         = 35
)

func setWindowAttribute(hwnd unsafe.Pointer, attribute uintptr, value uint32) {
	procDwmSetWindowAttribute.Call(
		uintptr(hwnd),
		attribute,
		uintptr(unsafe.Pointer(&value)),
		unsafe.Sizeof(value),
	)
}

// styleWindow paints the title bar and border with the clear color.
func styleWindow(window *glfw.Window, clearColor [3]float32) {
	hwnd := window.GetWin32Window()
	if hwnd == nil {
		return
	}
	hwndPtr := unsafe.Pointer(hwnd)
	setWindowAttribute(hwndPtr, dwmwaUseImmersiveDarkMode, 1)

	colorBGR := colorRef(clearColor)
	setWindowAttribute(hwndPtr, dwmwaBorderColor, colorBGR)
	setWindowAttribute(hwndPtr, dwmwaCaptionColor, colorBGR)
}
