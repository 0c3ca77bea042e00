// SPDX-License-Identifier: Unlicense OR MIT

// Package gl exposes the subset of desktop OpenGL 3.3 core used by the
// backend as a narrow interface. The production implementation is backed
// by github.com/go-gl/gl; everything above this package talks to the
// interface only.
package gl

type Enum uint32

const (
	ACTIVE_ATTRIBUTES                    = 0x8b89
	ACTIVE_UNIFORMS                      = 0x8b86
	ACTIVE_UNIFORM_BLOCKS                = 0x8a36
	ALPHA                                = 0x1906
	ALWAYS                               = 0x207
	ARRAY_BUFFER                         = 0x8892
	BACK                                 = 0x405
	BLEND                                = 0xbe2
	BOOL                                 = 0x8b56
	CCW                                  = 0x901
	CLAMP_TO_EDGE                        = 0x812f
	COLOR_ATTACHMENT0                    = 0x8ce0
	COLOR_BUFFER_BIT                     = 0x4000
	COMPILE_STATUS                       = 0x8b81
	CONSTANT_ALPHA                       = 0x8003
	CONSTANT_COLOR                       = 0x8001
	CULL_FACE                            = 0xb44
	CW                                   = 0x900
	DEBUG_OUTPUT                         = 0x92e0
	DEBUG_OUTPUT_SYNCHRONOUS             = 0x8242
	DEBUG_SEVERITY_HIGH                  = 0x9146
	DEBUG_SEVERITY_LOW                   = 0x9148
	DEBUG_SEVERITY_MEDIUM                = 0x9147
	DEBUG_SEVERITY_NOTIFICATION          = 0x826b
	DEBUG_SOURCE_API                     = 0x8246
	DEBUG_SOURCE_APPLICATION             = 0x824a
	DEBUG_SOURCE_OTHER                   = 0x824b
	DEBUG_SOURCE_SHADER_COMPILER         = 0x8248
	DEBUG_SOURCE_THIRD_PARTY             = 0x8249
	DEBUG_SOURCE_WINDOW_SYSTEM           = 0x8247
	DEBUG_TYPE_DEPRECATED_BEHAVIOR       = 0x824d
	DEBUG_TYPE_ERROR                     = 0x824c
	DEBUG_TYPE_MARKER                    = 0x8268
	DEBUG_TYPE_OTHER                     = 0x8251
	DEBUG_TYPE_PERFORMANCE               = 0x8250
	DEBUG_TYPE_POP_GROUP                 = 0x826a
	DEBUG_TYPE_PORTABILITY               = 0x824f
	DEBUG_TYPE_PUSH_GROUP                = 0x8269
	DEBUG_TYPE_UNDEFINED_BEHAVIOR        = 0x824e
	DEPTH_ATTACHMENT                     = 0x8d00
	DEPTH_BUFFER_BIT                     = 0x100
	DEPTH_COMPONENT                      = 0x1902
	DEPTH_TEST                           = 0xb71
	DRAW_FRAMEBUFFER                     = 0x8ca9
	DST_ALPHA                            = 0x304
	DST_COLOR                            = 0x306
	EQUAL                                = 0x202
	FALSE                                = 0
	FLOAT                                = 0x1406
	FLOAT_MAT4                           = 0x8b5c
	FLOAT_VEC2                           = 0x8b50
	FLOAT_VEC3                           = 0x8b51
	FLOAT_VEC4                           = 0x8b52
	FRAGMENT_SHADER                      = 0x8b30
	FRAMEBUFFER                          = 0x8d40
	FRAMEBUFFER_BINDING                  = 0x8ca6
	FRAMEBUFFER_COMPLETE                 = 0x8cd5
	FRONT_AND_BACK                       = 0x408
	GEQUAL                               = 0x206
	GREATER                              = 0x204
	INFO_LOG_LENGTH                      = 0x8b84
	INT                                  = 0x1404
	INVALID_ENUM                         = 0x500
	INVALID_FRAMEBUFFER_OPERATION        = 0x506
	INVALID_OPERATION                    = 0x502
	INVALID_VALUE                        = 0x501
	LEQUAL                               = 0x203
	LESS                                 = 0x201
	LINEAR                               = 0x2601
	LINEAR_MIPMAP_LINEAR                 = 0x2703
	LINK_STATUS                          = 0x8b82
	MAX_TEXTURE_SIZE                     = 0xd33
	MULTISAMPLE                          = 0x809d
	NEAREST                              = 0x2600
	NEVER                                = 0x200
	NOTEQUAL                             = 0x205
	NO_ERROR                             = 0x0
	NUM_EXTENSIONS                       = 0x821d
	ONE                                  = 0x1
	ONE_MINUS_CONSTANT_ALPHA             = 0x8004
	ONE_MINUS_CONSTANT_COLOR             = 0x8002
	ONE_MINUS_DST_ALPHA                  = 0x305
	ONE_MINUS_DST_COLOR                  = 0x307
	ONE_MINUS_SRC1_ALPHA                 = 0x88fb
	ONE_MINUS_SRC1_COLOR                 = 0x88fa
	ONE_MINUS_SRC_ALPHA                  = 0x303
	ONE_MINUS_SRC_COLOR                  = 0x301
	OUT_OF_MEMORY                        = 0x505
	R32F                                 = 0x822e
	R8                                   = 0x8229
	READ_FRAMEBUFFER                     = 0x8ca8
	RED                                  = 0x1903
	RENDERER                             = 0x1f01
	REPEAT                               = 0x2901
	RG                                   = 0x8227
	RG8                                  = 0x822b
	RGB                                  = 0x1907
	RGB32F                               = 0x8815
	RGB8                                 = 0x8051
	RGBA                                 = 0x1908
	RGBA32F                              = 0x8814
	RGBA8                                = 0x8058
	SAMPLER_2D                           = 0x8b5e
	SAMPLER_CUBE                         = 0x8b60
	SHADING_LANGUAGE_VERSION             = 0x8b8c
	SRC1_ALPHA                           = 0x8589
	SRC1_COLOR                           = 0x88f9
	SRC_ALPHA                            = 0x302
	SRC_ALPHA_SATURATE                   = 0x308
	SRC_COLOR                            = 0x300
	STACK_OVERFLOW                       = 0x503
	STACK_UNDERFLOW                      = 0x504
	STATIC_DRAW                          = 0x88e4
	TEXTURE0                             = 0x84c0
	TEXTURE_2D                           = 0xde1
	TEXTURE_2D_MULTISAMPLE               = 0x9100
	TEXTURE_CUBE_MAP                     = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X          = 0x8515
	TEXTURE_MAG_FILTER                   = 0x2800
	TEXTURE_MIN_FILTER                   = 0x2801
	TEXTURE_SWIZZLE_RGBA                 = 0x8e46
	TEXTURE_WRAP_R                       = 0x8072
	TEXTURE_WRAP_S                       = 0x2802
	TEXTURE_WRAP_T                       = 0x2803
	TRIANGLES                            = 0x4
	TRUE                                 = 1
	UNIFORM_BLOCK_ACTIVE_UNIFORMS        = 0x8a42
	UNIFORM_BLOCK_ACTIVE_UNIFORM_INDICES = 0x8a43
	UNIFORM_BUFFER                       = 0x8a11
	UNSIGNED_BYTE                        = 0x1401
	UNSIGNED_INT                         = 0x1405
	VENDOR                               = 0x1f00
	VERSION                              = 0x1f02
	VERTEX_SHADER                        = 0x8b31
	ZERO                                 = 0x0
)
