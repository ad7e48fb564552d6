package shader

import (
	"strings"
)

const glslFragmentHeader = `#version 400 core

in FRAG_DATA {
	vec3 wposition;
	vec2 uv;
	vec3 wnormal;
	vec3 wtangent;
	vec3 wbitangent;
} fs_in;

layout (location = 0) out vec3 gPosition;
layout (location = 1) out vec3 gNormal;
layout (location = 2) out vec4 gAlbedoSpec;

`

const glslFragmentBody = `
void main() {
	gPosition = fs_in.wposition;
	gNormal = normalize(fs_in.wnormal);
	gAlbedoSpec = vec4(1.0, 0.0, 0.0, 1.0);
}
`

// GenerateGLSL writes the standard G-buffer fragment shader for p. It
// declares one uniform per populated channel, named after the channel, in
// channel order. The output depends on p only.
func GenerateGLSL(p Parameters) string {
	var sb strings.Builder
	sb.WriteString(glslFragmentHeader)
	for c := Channel(0); c < ChannelCount; c++ {
		var glslType string
		switch p[c] {
		case Texture:
			glslType = "sampler2D"
		case Vector:
			glslType = "vec3"
		case Scalar:
			glslType = "float"
		default:
			continue
		}
		sb.WriteString("uniform ")
		sb.WriteString(glslType)
		sb.WriteByte(' ')
		sb.WriteString(c.String())
		sb.WriteString(";\n")
	}
	sb.WriteString(glslFragmentBody)
	return sb.String()
}

// Uniform names shared by the fixed vertex stages and the renderers.
const (
	UniformModel          = "u_mat_model"
	UniformView           = "u_mat_view"
	UniformProjection     = "u_mat_projection"
	UniformNormalMatrix   = "u_mat_normal"
	UniformCameraPosition = "u_camera_position"
	UniformBones          = "u_bones"
	UniformLineColor      = "u_color"

	MaxBones = 100
)

// Vertex attribute locations.
const (
	AttribPosition    = 0
	AttribNormal      = 1
	AttribTangent     = 2
	AttribBitangent   = 3
	AttribUV          = 4
	AttribBoneWeights = 5
	AttribBoneIDs     = 6
)

// AttribInstance is the first of four vec4 columns of the instance matrix.
const AttribInstance = 5

const StandardVertexGLSL = `#version 400 core

layout (location = 0) in vec3 position;
layout (location = 1) in vec3 normal;
layout (location = 2) in vec3 tangent;
layout (location = 3) in vec3 bitangent;
layout (location = 4) in vec2 uv;

uniform mat3 u_mat_normal;
uniform mat4 u_mat_projection;
uniform mat4 u_mat_view;
uniform mat4 u_mat_model;
uniform vec3 u_camera_position;

out FRAG_DATA {
	vec3 wposition;
	vec2 uv;
	vec3 wnormal;
	vec3 wtangent;
	vec3 wbitangent;
} vs_out;

void main() {
	vs_out.wposition = vec3(u_mat_model * vec4(position, 1.0));
	gl_Position = u_mat_projection * u_mat_view * vec4(vs_out.wposition, 1.0);
	vs_out.wnormal = u_mat_normal * normal;
	vs_out.wtangent = u_mat_normal * tangent;
	vs_out.wbitangent = u_mat_normal * bitangent;
	vs_out.uv = uv;
}
`

const SkinVertexGLSL = `#version 400 core

layout (location = 0) in vec3 position;
layout (location = 1) in vec3 normal;
layout (location = 2) in vec3 tangent;
layout (location = 3) in vec3 bitangent;
layout (location = 4) in vec2 uv;
layout (location = 5) in vec4 boneWeights;
layout (location = 6) in ivec4 boneIDs;

const int MAX_BONES = 100;

uniform mat3 u_mat_normal;
uniform mat4 u_mat_projection;
uniform mat4 u_mat_view;
uniform mat4 u_mat_model;
uniform vec3 u_camera_position;
uniform mat4 u_bones[MAX_BONES];

out FRAG_DATA {
	vec3 wposition;
	vec2 uv;
	vec3 wnormal;
	vec3 wtangent;
	vec3 wbitangent;
} vs_out;

void main() {
	mat4 skin = mat4(0.0);
	for (int i = 0; i < 4; i++) {
		skin += boneWeights[i] * u_bones[boneIDs[i]];
	}
	mat3 skinNormal = mat3(skin);
	vs_out.wposition = vec3(u_mat_model * skin * vec4(position, 1.0));
	gl_Position = u_mat_projection * u_mat_view * vec4(vs_out.wposition, 1.0);
	vs_out.wnormal = u_mat_normal * skinNormal * normal;
	vs_out.wtangent = u_mat_normal * skinNormal * tangent;
	vs_out.wbitangent = u_mat_normal * skinNormal * bitangent;
	vs_out.uv = uv;
}
`

const InstancedVertexGLSL = `#version 400 core

layout (location = 0) in vec3 position;
layout (location = 1) in vec3 normal;
layout (location = 2) in vec3 tangent;
layout (location = 3) in vec3 bitangent;
layout (location = 4) in vec2 uv;
layout (location = 5) in mat4 instanceModel;

uniform mat4 u_mat_projection;
uniform mat4 u_mat_view;
uniform mat4 u_mat_model;
uniform vec3 u_camera_position;

out FRAG_DATA {
	vec3 wposition;
	vec2 uv;
	vec3 wnormal;
	vec3 wtangent;
	vec3 wbitangent;
} vs_out;

void main() {
	mat4 model = u_mat_model * instanceModel;
	mat3 normalMatrix = transpose(inverse(mat3(model)));
	vs_out.wposition = vec3(model * vec4(position, 1.0));
	gl_Position = u_mat_projection * u_mat_view * vec4(vs_out.wposition, 1.0);
	vs_out.wnormal = normalMatrix * normal;
	vs_out.wtangent = normalMatrix * tangent;
	vs_out.wbitangent = normalMatrix * bitangent;
	vs_out.uv = uv;
}
`

const LineVertexGLSL = `#version 400 core

layout (location = 0) in vec3 position;

uniform mat4 u_mat_projection;
uniform mat4 u_mat_view;
uniform mat4 u_mat_model;

void main() {
	gl_Position = u_mat_projection * u_mat_view * u_mat_model * vec4(position, 1.0);
}
`

const LineFragmentGLSL = `#version 400 core

uniform vec3 u_color;

layout (location = 0) out vec3 gPosition;
layout (location = 1) out vec3 gNormal;
layout (location = 2) out vec4 gAlbedoSpec;

void main() {
	gPosition = vec3(0.0);
	gNormal = vec3(0.0);
	gAlbedoSpec = vec4(u_color, 0.0);
}
`
