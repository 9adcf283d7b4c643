package renderer

// TileShader renders the map quad: the vertex stage projects positions into
// clip space and forwards them as world coordinates; the fragment stage
// classifies each pixel into a tile id, discards non-renderable ids, and
// samples the tile's atlas layer. It mirrors pkg/shading exactly, so the
// CPU tests pin down the behavior of this code too.
const TileShader = `
struct Uniforms {
    mvp: mat4x4<f32>,
}

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var tileAtlas: texture_2d_array<f32>;
@group(0) @binding(2) var tileSampler: sampler;
@group(0) @binding(3) var tileData: texture_2d<u32>;

struct VertexInput {
    @location(0) position: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) worldPos: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = uniforms.mvp * vec4<f32>(in.position, 0.0, 1.0);
    out.worldPos = in.position;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let dims = textureDimensions(tileData, 0);

    // Outside the map the border tile is drawn instead of a grid lookup.
    var tile: u32;
    if (in.worldPos.x < 0.0 || in.worldPos.y < 0.0 ||
        in.worldPos.x > f32(dims.x) || in.worldPos.y > f32(dims.y)) {
        tile = 68u;
    } else {
        let cell = vec2<i32>(floor(in.worldPos));
        tile = textureLoad(tileData, cell, 0).r;
    }

    // Non-renderable ids: empty, flags/goals, doors, beyond the atlas.
    if (tile == 0u) {
        discard;
    }
    if (tile == 170u || tile == 172u) {
        discard;
    }
    if (tile >= 162u && tile <= 169u) {
        discard;
    }
    if (tile > 190u) {
        discard;
    }

    let uv = fract(in.worldPos + vec2<f32>(2.0, 2.0));
    return textureSample(tileAtlas, tileSampler, uv, i32(tile) - 1);
}
`
