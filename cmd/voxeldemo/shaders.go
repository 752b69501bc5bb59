package main

// voxelVertexShader and voxelFragmentShader are the minimal GLSL pair the
// demo compiles via render.NewShader, consuming the interleaved layout
// gpuupload.Uploader's vertex attribute pointers describe (position,
// normal, up-to-4 material ids, up-to-4 blend weights).
const voxelVertexShader = `
#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec4 aMaterialIDs;
layout (location = 3) in vec4 aMaterialWeights;

uniform mat4 uViewProjection;

out vec3 vNormal;
out vec4 vMaterialIDs;
out vec4 vMaterialWeights;

void main() {
    vNormal = aNormal;
    vMaterialIDs = aMaterialIDs;
    vMaterialWeights = aMaterialWeights;
    gl_Position = uViewProjection * vec4(aPosition, 1.0);
}
`

const voxelFragmentShader = `
#version 410 core
in vec3 vNormal;
in vec4 vMaterialIDs;
in vec4 vMaterialWeights;

uniform vec3 uCameraPos;
uniform vec3 uSunDirection;

out vec4 fragColor;

// materialColor is a placeholder palette lookup; a real renderer would
// sample a material color/texture table indexed by vMaterialIDs instead.
vec3 materialColor(float id) {
    if (id < 0.5) return vec3(0.0);
    return vec3(0.5 + 0.1 * id, 0.5, 0.4);
}

void main() {
    vec3 blended =
        materialColor(vMaterialIDs.x) * (vMaterialWeights.x / 8.0) +
        materialColor(vMaterialIDs.y) * (vMaterialWeights.y / 8.0) +
        materialColor(vMaterialIDs.z) * (vMaterialWeights.z / 8.0) +
        materialColor(vMaterialIDs.w) * (vMaterialWeights.w / 8.0);

    float diffuse = max(dot(normalize(vNormal), normalize(uSunDirection)), 0.15);
    fragColor = vec4(blended * diffuse, 1.0);
}
`
