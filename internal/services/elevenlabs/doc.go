// Package elevenlabs is a small HTTP client for the ElevenLabs text-to-speech
// API. Requests ask for raw 24 kHz PCM (output_format=pcm_24000) which is
// decoded with audio.FromPCM16.
package elevenlabs
