package shader

// Entry point names shared by all built-in shaders.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// spriteCommon is the shared preamble for the sprite and glyph shaders:
// the quad samples a texture region selected by per-instance UV transform.
// All matrices arrive row-major and are transposed on read.
const spriteCommon = `
struct Camera {
    view_proj: mat4x4<f32>,
};

struct SpriteInstance {
    model: mat4x4<f32>,
    uv_offset: vec2<f32>,
    uv_scale: vec2<f32>,
};

struct KindParams {
    tint: vec4<f32>,
};

@group(0) @binding(0) var t_diffuse: texture_2d<f32>;
@group(0) @binding(1) var s_diffuse: sampler;
@group(1) @binding(0) var<uniform> camera: Camera;
@group(2) @binding(0) var<uniform> kind_params: KindParams;
@group(3) @binding(0) var<storage, read> instances: array<SpriteInstance>;

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
    @builtin(instance_index) instance_index: u32,
) -> VertexOutput {
    let inst = instances[instance_index];
    let model = transpose(inst.model);
    let view_proj = transpose(camera.view_proj);

    var out: VertexOutput;
    out.clip_position = view_proj * model * vec4<f32>(position, 0.0, 1.0);
    out.uv = inst.uv_offset + uv * inst.uv_scale;
    return out;
}
`

// SpriteWGSL renders textured quads. The fragment output is the sampled
// texel modulated by the static per-kind tint.
const SpriteWGSL = spriteCommon + `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_diffuse, s_diffuse, in.uv) * kind_params.tint;
}
`

// GlyphWGSL renders glyph quads from a coverage atlas. Coverage lives in
// the red channel; the fragment output is the per-kind text color with
// coverage as alpha.
const GlyphWGSL = spriteCommon + `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let coverage = textureSample(t_diffuse, s_diffuse, in.uv).r;
    return vec4<f32>(kind_params.tint.rgb, kind_params.tint.a * coverage);
}
`

// RectWGSL renders rounded rectangles on the centered quad. The fragment
// stage evaluates two signed-distance functions in pixel space: the outer
// rounded box for the antialiased silhouette, and an inner box shrunk by
// the border thickness whose mask composites the fill over the border
// color. Border radius shrinks with the inset, clamped at zero.
const RectWGSL = `
struct Camera {
    view_proj: mat4x4<f32>,
};

struct RectInstance {
    model: mat4x4<f32>,
    color: vec4<f32>,
    corner_radius: f32,
    border_thickness: f32,
    _pad0: vec2<f32>,
    border_color: vec4<f32>,
    size_px: vec2<f32>,
    _pad1: vec2<f32>,
    _pad2: vec4<f32>,
};

struct KindParams {
    tint: vec4<f32>,
};

@group(0) @binding(0) var t_diffuse: texture_2d<f32>;
@group(0) @binding(1) var s_diffuse: sampler;
@group(1) @binding(0) var<uniform> camera: Camera;
@group(2) @binding(0) var<uniform> kind_params: KindParams;
@group(3) @binding(0) var<storage, read> instances: array<RectInstance>;

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) p_px: vec2<f32>,
    @location(1) @interpolate(flat) color: vec4<f32>,
    @location(2) @interpolate(flat) border_color: vec4<f32>,
    @location(3) @interpolate(flat) half_size: vec2<f32>,
    @location(4) @interpolate(flat) radius: f32,
    @location(5) @interpolate(flat) border: f32,
};

@vertex
fn vs_main(
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
    @builtin(instance_index) instance_index: u32,
) -> VertexOutput {
    let inst = instances[instance_index];
    let model = transpose(inst.model);
    let view_proj = transpose(camera.view_proj);
    let half_size = inst.size_px * 0.5;

    var out: VertexOutput;
    out.clip_position = view_proj * model * vec4<f32>(position, 0.0, 1.0);
    out.p_px = position * half_size;
    out.color = inst.color;
    out.border_color = inst.border_color;
    out.half_size = half_size;
    out.radius = inst.corner_radius;
    out.border = inst.border_thickness;
    return out;
}

fn sd_rounded_box(p: vec2<f32>, half_size: vec2<f32>, radius: f32) -> f32 {
    let q = abs(p) - half_size + vec2<f32>(radius);
    return length(max(q, vec2<f32>(0.0))) + min(max(q.x, q.y), 0.0) - radius;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let d_outer = sd_rounded_box(in.p_px, in.half_size, in.radius);
    let outer_mask = clamp(0.5 - d_outer, 0.0, 1.0);

    var inner_mask = 1.0;
    if (in.border > 0.0) {
        let inner_radius = max(in.radius - in.border, 0.0);
        let d_inner = sd_rounded_box(in.p_px, in.half_size - vec2<f32>(in.border), inner_radius);
        inner_mask = clamp(0.5 - d_inner, 0.0, 1.0);
    }

    let composite = mix(in.border_color, in.color, inner_mask);
    return vec4<f32>(composite.rgb, composite.a * outer_mask) * kind_params.tint;
}
`
