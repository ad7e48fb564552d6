package shader

import (
	"fmt"
	"strings"
)

// Bind groups used by the WGSL variants.
const (
	WGSLGroupFrame    = 0
	WGSLGroupMaterial = 1
	WGSLEntryVertex   = "vs_main"
	WGSLEntryFragment = "fs_main"
)

const wgslFragmentHeader = `struct FragmentInput {
    @location(0) wposition: vec3<f32>,
    @location(1) uv: vec2<f32>,
    @location(2) wnormal: vec3<f32>,
    @location(3) wtangent: vec3<f32>,
    @location(4) wbitangent: vec3<f32>,
}

struct GBufferOutput {
    @location(0) position: vec4<f32>,
    @location(1) normal: vec4<f32>,
    @location(2) albedo_spec: vec4<f32>,
}
`

const wgslFragmentBody = `
@fragment
fn fs_main(frag: FragmentInput) -> GBufferOutput {
    var gbuffer: GBufferOutput;
    gbuffer.position = vec4<f32>(frag.wposition, 1.0);
    gbuffer.normal = vec4<f32>(normalize(frag.wnormal), 0.0);
    gbuffer.albedo_spec = vec4<f32>(1.0, 0.0, 0.0, 1.0);
    return gbuffer;
}
`

// GenerateWGSL is the WGSL counterpart of GenerateGLSL for the Vulkan back
// end. Scalar and vector channels live in one uniform struct at binding 0 of
// the material group; each texture channel takes a texture and a sampler
// binding after it, in channel order.
func GenerateWGSL(p Parameters) string {
	var sb strings.Builder
	sb.WriteString(wgslFragmentHeader)

	var fields []string
	for c := Channel(0); c < ChannelCount; c++ {
		switch p[c] {
		case Vector:
			fields = append(fields, fmt.Sprintf("    %s: vec3<f32>,\n", c))
		case Scalar:
			fields = append(fields, fmt.Sprintf("    %s: f32,\n", c))
		}
	}
	binding := 0
	if len(fields) > 0 {
		sb.WriteString("\nstruct MaterialParams {\n")
		for _, f := range fields {
			sb.WriteString(f)
		}
		sb.WriteString("}\n\n")
		fmt.Fprintf(&sb, "@group(%d) @binding(%d) var<uniform> material: MaterialParams;\n", WGSLGroupMaterial, binding)
		binding++
	}

	for c := Channel(0); c < ChannelCount; c++ {
		if p[c] != Texture {
			continue
		}
		fmt.Fprintf(&sb, "@group(%d) @binding(%d) var %s_texture: texture_2d<f32>;\n", WGSLGroupMaterial, binding, c)
		fmt.Fprintf(&sb, "@group(%d) @binding(%d) var %s_sampler: sampler;\n", WGSLGroupMaterial, binding+1, c)
		binding += 2
	}

	sb.WriteString(wgslFragmentBody)
	return sb.String()
}

// MaterialBindingCount returns how many material group bindings
// GenerateWGSL declares for p.
func MaterialBindingCount(p Parameters) int {
	n, uniforms := 0, false
	for _, t := range p {
		switch t {
		case Scalar, Vector:
			uniforms = true
		case Texture:
			n += 2
		}
	}
	if uniforms {
		n++
	}
	return n
}

const wgslFrame = `struct Frame {
    model: mat4x4<f32>,
    view: mat4x4<f32>,
    projection: mat4x4<f32>,
    camera_position: vec4<f32>,
}

@group(0) @binding(0) var<uniform> frame: Frame;

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) wposition: vec3<f32>,
    @location(1) uv: vec2<f32>,
    @location(2) wnormal: vec3<f32>,
    @location(3) wtangent: vec3<f32>,
    @location(4) wbitangent: vec3<f32>,
}
`

const StandardVertexWGSL = wgslFrame + `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) tangent: vec3<f32>,
    @location(3) bitangent: vec3<f32>,
    @location(4) uv: vec2<f32>,
}

@vertex
fn vs_main(v: VertexInput) -> VertexOutput {
    var o: VertexOutput;
    let world = frame.model * vec4<f32>(v.position, 1.0);
    let basis = mat3x3<f32>(frame.model[0].xyz, frame.model[1].xyz, frame.model[2].xyz);
    o.wposition = world.xyz;
    o.clip = frame.projection * frame.view * world;
    o.wnormal = basis * v.normal;
    o.wtangent = basis * v.tangent;
    o.wbitangent = basis * v.bitangent;
    o.uv = v.uv;
    return o;
}
`

const InstancedVertexWGSL = wgslFrame + `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) tangent: vec3<f32>,
    @location(3) bitangent: vec3<f32>,
    @location(4) uv: vec2<f32>,
    @location(5) instance0: vec4<f32>,
    @location(6) instance1: vec4<f32>,
    @location(7) instance2: vec4<f32>,
    @location(8) instance3: vec4<f32>,
}

@vertex
fn vs_main(v: VertexInput) -> VertexOutput {
    var o: VertexOutput;
    let model = frame.model * mat4x4<f32>(v.instance0, v.instance1, v.instance2, v.instance3);
    let world = model * vec4<f32>(v.position, 1.0);
    let basis = mat3x3<f32>(model[0].xyz, model[1].xyz, model[2].xyz);
    o.wposition = world.xyz;
    o.clip = frame.projection * frame.view * world;
    o.wnormal = basis * v.normal;
    o.wtangent = basis * v.tangent;
    o.wbitangent = basis * v.bitangent;
    o.uv = v.uv;
    return o;
}
`

const SkinVertexWGSL = wgslFrame + `
@group(0) @binding(1) var<storage, read> bones: array<mat4x4<f32>>;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) tangent: vec3<f32>,
    @location(3) bitangent: vec3<f32>,
    @location(4) uv: vec2<f32>,
    @location(5) weights: vec4<f32>,
    @location(6) bone_ids: vec4<u32>,
}

@vertex
fn vs_main(v: VertexInput) -> VertexOutput {
    var o: VertexOutput;
    var skin = mat4x4<f32>(vec4<f32>(0.0), vec4<f32>(0.0), vec4<f32>(0.0), vec4<f32>(0.0));
    for (var i = 0u; i < 4u; i = i + 1u) {
        skin = skin + bones[v.bone_ids[i]] * v.weights[i];
    }
    let model = frame.model * skin;
    let world = model * vec4<f32>(v.position, 1.0);
    let basis = mat3x3<f32>(model[0].xyz, model[1].xyz, model[2].xyz);
    o.wposition = world.xyz;
    o.clip = frame.projection * frame.view * world;
    o.wnormal = basis * v.normal;
    o.wtangent = basis * v.tangent;
    o.wbitangent = basis * v.bitangent;
    o.uv = v.uv;
    return o;
}
`
