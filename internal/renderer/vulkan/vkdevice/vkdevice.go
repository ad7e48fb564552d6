// Package vkdevice implements vulkan.Device with vulkan-go. Buffers and
// sampled images live in host visible memory and are filled by mapping;
// render targets are device local.
package vkdevice

import (
	"errors"
	"fmt"
	"unsafe"

	"StoneEngine/internal/image"
	"StoneEngine/internal/logger"
	"StoneEngine/internal/renderer/vulkan"
	"StoneEngine/internal/scene"

	vk "github.com/vulkan-go/vulkan"
	"go.uber.org/zap"
)

func check(ret vk.Result, call string) error {
	if ret != vk.Success {
		return fmt.Errorf("%s: %w", call, vk.Error(ret))
	}
	return nil
}

func cString(s string) string { return s + "\x00" }

// Device owns a Vulkan instance and a logical device with one graphics queue.
type Device struct {
	instance    vk.Instance
	physical    vk.PhysicalDevice
	device      vk.Device
	queue       vk.Queue
	queueFamily uint32
	memProps    vk.PhysicalDeviceMemoryProperties
}

var _ vulkan.Device = (*Device)(nil)

// New loads the Vulkan library and opens the first device with a graphics
// queue.
func New(appName string) (*Device, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, fmt.Errorf("failed to load Vulkan library: %w", err)
	}
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize Vulkan loader: %w", err)
	}

	d := &Device{}
	if err := d.createInstance(appName); err != nil {
		return nil, err
	}
	if err := d.selectPhysicalDevice(); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.createDevice(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) createInstance(appName string) error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cString(appName),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        cString("StoneEngine"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	var instance vk.Instance
	if err := check(vk.CreateInstance(&vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}, nil, &instance), "vkCreateInstance"); err != nil {
		return err
	}
	d.instance = instance
	vk.InitInstance(instance)
	return nil
}

func (d *Device) selectPhysicalDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(d.instance, &count, nil)
	if count == 0 {
		return errors.New("no Vulkan-capable GPU found")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(d.instance, &count, devices)

	for _, physical := range devices {
		var familyCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(physical, &familyCount, nil)
		families := make([]vk.QueueFamilyProperties, familyCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(physical, &familyCount, families)

		for i, family := range families {
			family.Deref()
			if family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
				continue
			}
			d.physical = physical
			d.queueFamily = uint32(i)
			vk.GetPhysicalDeviceMemoryProperties(physical, &d.memProps)
			d.memProps.Deref()

			var props vk.PhysicalDeviceProperties
			vk.GetPhysicalDeviceProperties(physical, &props)
			props.Deref()
			logger.Log.Info("Vulkan device selected",
				zap.String("name", vk.ToString(props.DeviceName[:])),
				zap.Uint32("queueFamily", d.queueFamily))
			return nil
		}
	}
	return errors.New("no GPU with a graphics queue found")
}

func (d *Device) createDevice() error {
	var device vk.Device
	if err := check(vk.CreateDevice(d.physical, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: d.queueFamily,
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		}},
	}, nil, &device), "vkCreateDevice"); err != nil {
		return err
	}
	d.device = device
	var queue vk.Queue
	vk.GetDeviceQueue(device, d.queueFamily, 0, &queue)
	d.queue = queue
	return nil
}

// Handle returns the logical device for command recording.
func (d *Device) Handle() vk.Device        { return d.device }
func (d *Device) Queue() vk.Queue          { return d.queue }
func (d *Device) QueueFamilyIndex() uint32 { return d.queueFamily }

func (d *Device) WaitIdle() {
	if d.device != nil {
		vk.DeviceWaitIdle(d.device)
	}
}

// Close destroys the device and the instance. Every resource created from
// the device must be destroyed first.
func (d *Device) Close() {
	if d.device != nil {
		vk.DeviceWaitIdle(d.device)
		vk.DestroyDevice(d.device, nil)
		d.device = nil
	}
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
}

// findMemoryType returns the first memory type allowed by typeBits with all
// of props.
func (d *Device) findMemoryType(typeBits uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < d.memProps.MemoryTypeCount; i++ {
		d.memProps.MemoryTypes[i].Deref()
		if typeBits&(1<<i) != 0 && d.memProps.MemoryTypes[i].PropertyFlags&props == props {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no memory type with flags 0x%x in mask 0x%x", props, typeBits)
}

func (d *Device) allocate(reqs vk.MemoryRequirements, props vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	memType, err := d.findMemoryType(reqs.MemoryTypeBits, props)
	if err != nil {
		return nil, err
	}
	var memory vk.DeviceMemory
	if err := check(vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory), "vkAllocateMemory"); err != nil {
		return nil, err
	}
	return memory, nil
}

// mapped maps size bytes of memory and hands them to fill.
func (d *Device) mapped(memory vk.DeviceMemory, size vk.DeviceSize, fill func([]byte)) error {
	var data unsafe.Pointer
	if err := check(vk.MapMemory(d.device, memory, 0, size, 0, &data), "vkMapMemory"); err != nil {
		return err
	}
	fill(unsafe.Slice((*byte)(data), int(size)))
	vk.UnmapMemory(d.device, memory)
	return nil
}

type shaderModule struct {
	device vk.Device
	module vk.ShaderModule
}

func (m *shaderModule) Destroy() {
	vk.DestroyShaderModule(m.device, m.module, nil)
}

func (d *Device) CreateShaderModule(code []uint32) (vulkan.Resource, error) {
	var module vk.ShaderModule
	if err := check(vk.CreateShaderModule(d.device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}, nil, &module), "vkCreateShaderModule"); err != nil {
		return nil, err
	}
	return &shaderModule{device: d.device, module: module}, nil
}

// Buffer is a host visible buffer.
type Buffer struct {
	device vk.Device
	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.device, b.Buffer, nil)
	vk.FreeMemory(b.device, b.Memory, nil)
}

func bufferUsage(u vulkan.BufferUsage) vk.BufferUsageFlags {
	switch u {
	case vulkan.BufferIndex:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	case vulkan.BufferStorage:
		return vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
	default:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
}

func (d *Device) CreateBuffer(usage vulkan.BufferUsage, data []byte) (vulkan.Resource, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty %s buffer", usage)
	}
	var buffer vk.Buffer
	if err := check(vk.CreateBuffer(d.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       bufferUsage(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer), "vkCreateBuffer"); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buffer, &reqs)
	reqs.Deref()
	memory, err := d.allocate(reqs, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(d.device, buffer, nil)
		return nil, err
	}
	vk.BindBufferMemory(d.device, buffer, memory, 0)

	b := &Buffer{device: d.device, Buffer: buffer, Memory: memory, Size: vk.DeviceSize(len(data))}
	if err := d.mapped(memory, b.Size, func(dst []byte) { copy(dst, data) }); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// Image is an image with its view and, for sampled images, its sampler.
type Image struct {
	device  vk.Device
	Image   vk.Image
	Memory  vk.DeviceMemory
	View    vk.ImageView
	Sampler vk.Sampler
	Format  vk.Format
}

func (img *Image) Destroy() {
	if img.Sampler != nil {
		vk.DestroySampler(img.device, img.Sampler, nil)
	}
	if img.View != nil {
		vk.DestroyImageView(img.device, img.View, nil)
	}
	vk.DestroyImage(img.device, img.Image, nil)
	vk.FreeMemory(img.device, img.Memory, nil)
}

// sampledFormat returns the format for channels. Three channel images are
// widened to RGBA since linear RGB formats are rarely supported.
func sampledFormat(c image.Channel) (vk.Format, int) {
	switch c {
	case image.Grey:
		return vk.FormatR8Unorm, 1
	case image.Dual:
		return vk.FormatR8g8Unorm, 2
	default:
		return vk.FormatR8g8b8a8Unorm, 4
	}
}

func targetFormat(u vulkan.ImageUsage) (vk.Format, vk.ImageUsageFlags, vk.ImageAspectFlagBits) {
	switch u {
	case vulkan.ImageHDRTarget:
		return vk.FormatR16g16b16a16Sfloat, vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageSampledBit), vk.ImageAspectColorBit
	case vulkan.ImageDepthTarget:
		return vk.FormatD32Sfloat, vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit), vk.ImageAspectDepthBit
	default:
		return vk.FormatR8g8b8a8Unorm, vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageSampledBit | vk.ImageUsageTransferSrcBit), vk.ImageAspectColorBit
	}
}

func (d *Device) CreateImage(desc vulkan.ImageDesc) (vulkan.Resource, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", desc.Width, desc.Height)
	}
	if desc.Usage == vulkan.ImageSampled {
		return d.createSampledImage(desc)
	}
	format, usage, aspect := targetFormat(desc.Usage)
	img, err := d.newImage(desc, format, usage, vk.ImageTilingOptimal, vk.ImageLayoutUndefined,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	if err := d.createView(img, aspect); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

func (d *Device) newImage(desc vulkan.ImageDesc, format vk.Format, usage vk.ImageUsageFlags, tiling vk.ImageTiling, layout vk.ImageLayout, props vk.MemoryPropertyFlags) (*Image, error) {
	var handle vk.Image
	if err := check(vk.CreateImage(d.device, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  uint32(desc.Width),
			Height: uint32(desc.Height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        tiling,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: layout,
	}, nil, &handle), "vkCreateImage"); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, handle, &reqs)
	reqs.Deref()
	memory, err := d.allocate(reqs, props)
	if err != nil {
		vk.DestroyImage(d.device, handle, nil)
		return nil, err
	}
	vk.BindImageMemory(d.device, handle, memory, 0)
	return &Image{device: d.device, Image: handle, Memory: memory, Format: format}, nil
}

func (d *Device) createView(img *Image, aspect vk.ImageAspectFlagBits) error {
	var view vk.ImageView
	if err := check(vk.CreateImageView(d.device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img.Image,
		ViewType: vk.ImageViewType2d,
		Format:   img.Format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view), "vkCreateImageView"); err != nil {
		return err
	}
	img.View = view
	return nil
}

func (d *Device) createSampledImage(desc vulkan.ImageDesc) (vulkan.Resource, error) {
	format, texelSize := sampledFormat(desc.Channels)
	srcTexel := int(desc.Channels)
	rowBytes := int(desc.Width) * srcTexel
	if len(desc.Pixels) < rowBytes*int(desc.Height) {
		return nil, fmt.Errorf("image data too short: %d bytes for %dx%d", len(desc.Pixels), desc.Width, desc.Height)
	}

	img, err := d.newImage(desc, format, vk.ImageUsageFlags(vk.ImageUsageSampledBit), vk.ImageTilingLinear,
		vk.ImageLayoutPreinitialized, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}

	var layout vk.SubresourceLayout
	vk.GetImageSubresourceLayout(d.device, img.Image, &vk.ImageSubresource{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	}, &layout)
	layout.Deref()

	err = d.mapped(img.Memory, layout.Offset+layout.Size, func(dst []byte) {
		pitch := int(layout.RowPitch)
		for y := 0; y < int(desc.Height); y++ {
			src := desc.Pixels[y*rowBytes : (y+1)*rowBytes]
			row := dst[int(layout.Offset)+y*pitch:]
			if srcTexel == texelSize {
				copy(row, src)
				continue
			}
			for x := 0; x < int(desc.Width); x++ {
				copy(row[x*texelSize:], src[x*srcTexel:(x+1)*srcTexel])
				row[x*texelSize+3] = 0xff
			}
		}
	})
	if err != nil {
		img.Destroy()
		return nil, err
	}
	if err := d.createView(img, vk.ImageAspectColorBit); err != nil {
		img.Destroy()
		return nil, err
	}
	if err := d.createSampler(img, desc); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

func filter(f scene.TextureFilter) vk.Filter {
	if f == scene.FilterNearest {
		return vk.FilterNearest
	}
	return vk.FilterLinear
}

func addressMode(w scene.TextureWrap) vk.SamplerAddressMode {
	switch w {
	case scene.WrapMirroredRepeat:
		return vk.SamplerAddressModeMirroredRepeat
	case scene.WrapClampToEdge:
		return vk.SamplerAddressModeClampToEdge
	case scene.WrapClampToBorder:
		return vk.SamplerAddressModeClampToBorder
	default:
		return vk.SamplerAddressModeRepeat
	}
}

func (d *Device) createSampler(img *Image, desc vulkan.ImageDesc) error {
	mode := addressMode(desc.Wrap)
	var sampler vk.Sampler
	if err := check(vk.CreateSampler(d.device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter(desc.MagFilter),
		MinFilter:               filter(desc.MinFilter),
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            mode,
		AddressModeV:            mode,
		AddressModeW:            mode,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		BorderColor:             vk.BorderColorFloatTransparentBlack,
		UnnormalizedCoordinates: vk.False,
	}, nil, &sampler), "vkCreateSampler"); err != nil {
		return err
	}
	img.Sampler = sampler
	return nil
}
