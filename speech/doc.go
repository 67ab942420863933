// Package speech prepares page content for text-to-speech synthesis.
//
// [ToSSML] compiles HTML (usually the output of htmldoc.Render) into an
// SSML-annotated string: headings gain emphasis and pauses, block ends gain
// pauses, and all other markup is stripped. The compiler builds an
// intermediate list of segments and serializes them in one pass, so the
// final whitespace collapse can never mangle emitted SSML tags.
//
// [ExtractBlocks] segments a document into the speakable units the audio
// pipeline synthesizes one at a time, with long paragraphs split at sentence
// boundaries. Each unit is identified by [ContentHash] for cache
// invalidation: unchanged text keeps its hash and its audio, any edit
// changes the hash and forces regeneration.
package speech
