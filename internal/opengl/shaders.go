package opengl

// vertSrc transforms by the row-vector matrices uploaded untransposed, which
// GLSL reads as their column-major equivalents.
const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;

void main() {
    gl_Position = mvp * vec4(inPosition, 1.0);
    fragColor   = inColor;
    fragNormal  = mat3(model) * inNormal;
    fragUV      = inUV;
}
` + "\x00"

// fragSrc: ambient + one directional light, Lambert diffuse.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;

out vec4 outColor;

uniform vec3  ambientColor;
uniform vec3  lightDir;      // towards the light
uniform vec3  lightRadiance; // color * intensity

uniform vec4      matAlbedo;
uniform bool      unlit;
uniform bool      doubleSided;
uniform bool      hasTexture;
uniform sampler2D albedoTex;

const float PI = 3.14159265359;

void main() {
    vec4 base = matAlbedo * fragColor;
    if (hasTexture) {
        base *= texture(albedoTex, fragUV);
    }
    if (base.a < 0.004) {
        discard;
    }
    if (unlit) {
        outColor = base;
        return;
    }

    vec3 n = normalize(fragNormal);
    if (doubleSided && !gl_FrontFacing) {
        n = -n;
    }
    // Lambert: irradiance times albedo over pi
    float ndl = max(dot(n, normalize(lightDir)), 0.0);
    vec3 lit = base.rgb / PI * (ambientColor + lightRadiance * ndl);
    outColor = vec4(min(lit, vec3(1.0)), base.a);
}
` + "\x00"

// overlayVertSrc draws a screen-space rectangle as a 4-vertex strip from
// gl_VertexID. rect is (left, top, right, bottom) in NDC, so UV (0, 0)
// is the first pixel row of the uploaded image.
const overlayVertSrc = `
#version 410 core
uniform vec4 rect;
out vec2 fragUV;
void main() {
    const vec2 corner[4] = vec2[4](
        vec2(0.0, 0.0),
        vec2(1.0, 0.0),
        vec2(0.0, 1.0),
        vec2(1.0, 1.0)
    );
    vec2 c = corner[gl_VertexID];
    gl_Position = vec4(mix(rect.xy, rect.zw, c), 0.0, 1.0);
    fragUV = c;
}
` + "\x00"

const overlayFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;
uniform sampler2D overlayTex;
void main() {
    outColor = texture(overlayTex, fragUV);
}
` + "\x00"
