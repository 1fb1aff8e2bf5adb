package main

import (
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"dubline/internal/audio"
	"dubline/internal/config"
	"dubline/internal/pipeline"
	"dubline/internal/testsupport"
	"dubline/internal/textutil"
	"dubline/internal/transcript"
)

type fakeProviderServer struct {
	*httptest.Server
	chatCalls   atomic.Int32
	speechCalls atomic.Int32
}

// newFakeProviderServer serves an OpenRouter-style chat endpoint at /chat
// and the OpenAI speech endpoint at /v1/audio/speech.
func newFakeProviderServer(t *testing.T) *fakeProviderServer {
	t.Helper()
	fake := &fakeProviderServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		fake.chatCalls.Add(1)
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat map[string]string `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		content := `{"ok":true}`
		if req.ResponseFormat == nil {
			text := testsupport.PromptText(req.Messages[len(req.Messages)-1].Content)
			words := make([]string, textutil.WordCount(text))
			for i := range words {
				words[i] = "hola"
			}
			content = strings.Join(words, " ")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	})
	mux.HandleFunc("/v1/audio/speech", func(w http.ResponseWriter, r *http.Request) {
		fake.speechCalls.Add(1)
		// 0.3s of 24 kHz mono 16-bit PCM at a constant level.
		pcm := make([]byte, 7200*2)
		for i := 0; i < len(pcm); i += 2 {
			binary.LittleEndian.PutUint16(pcm[i:], uint16(8000))
		}
		w.Header().Set("Content-Type", "audio/pcm")
		_, _ = w.Write(pcm)
	})
	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Close)
	return fake
}

func dubTestConfig(t *testing.T, server *fakeProviderServer) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAudioFormat(16000, 1), testsupport.WithWorkers(1, 1))
	cfg.Translation.Providers = []string{"llm"}
	cfg.Synthesis.Providers = []string{"openai"}
	cfg.Translation.BackoffSeconds = 0
	cfg.LLM.BaseURL = server.URL + "/chat"
	cfg.OpenAI.BaseURL = server.URL + "/v1"
	return cfg
}

func writeDubInputs(t *testing.T, dir string) (string, string) {
	t.Helper()
	transcriptPath := filepath.Join(dir, "episode.json")
	testsupport.WriteTranscript(t, transcriptPath, []transcript.Segment{
		{Start: 0, End: 1, Text: "Hello there.", Speaker: "A"},
		{Start: 1.5, End: 2.5, Text: "Good morning to you.", Speaker: "B"},
	})
	audioPath := filepath.Join(dir, "episode.wav")
	testsupport.WriteTone(t, audioPath, audio.Format{SampleRate: 16000, Channels: 1}, 3, 0.5)
	return transcriptPath, audioPath
}

func TestDubEndToEnd(t *testing.T) {
	clearProviderEnv(t)
	server := newFakeProviderServer(t)
	cfg := dubTestConfig(t, server)
	configPath := writeTestConfig(t, cfg)
	transcriptPath, audioPath := writeDubInputs(t, testsupport.BaseDir(cfg))

	out, stderr, err := runCLI(t, []string{"dub", transcriptPath, "--audio", audioPath, "--target", "es"}, configPath)
	if err != nil {
		t.Fatalf("dub: %v\nstderr: %s", err, stderr)
	}

	outputPath := filepath.Join(cfg.Paths.OutputDir, "episode.es.wav")
	srtPath := filepath.Join(cfg.Paths.OutputDir, "episode.es.srt")
	requireContains(t, out, outputPath)
	requireContains(t, out, srtPath)
	requireContains(t, out, "VOICE (OPENAI)")
	requireContains(t, stderr, "[100%]")

	track, err := audio.ReadWAVFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if track.Frames() != 48000 {
		t.Fatalf("output frames = %d, want 48000", track.Frames())
	}
	srt, err := os.ReadFile(srtPath)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	requireContains(t, string(srt), "00:00:01,500 --> 00:00:02,500\nhola hola hola hola")

	if got := server.speechCalls.Load(); got != 2 {
		t.Fatalf("speech calls = %d, want 2", got)
	}
	if server.chatCalls.Load() == 0 {
		t.Fatal("expected chat completions")
	}
}

func TestDubJSONAndJobHistory(t *testing.T) {
	clearProviderEnv(t)
	server := newFakeProviderServer(t)
	cfg := dubTestConfig(t, server)
	configPath := writeTestConfig(t, cfg)
	transcriptPath, audioPath := writeDubInputs(t, testsupport.BaseDir(cfg))
	outputPath := filepath.Join(testsupport.BaseDir(cfg), "custom", "dub.wav")

	out, stderr, err := runCLI(t, []string{"dub", transcriptPath, "--audio", audioPath, "--output", outputPath, "--no-subtitles", "--json"}, configPath)
	if err != nil {
		t.Fatalf("dub --json: %v\nstderr: %s", err, stderr)
	}
	requireNotContains(t, stderr, "[100%]")

	var report pipeline.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.JobID == "" || report.OutputPath != outputPath || report.SubtitlePath != "" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Segments != 2 || report.SpeechProviders["openai"] != 2 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(outputPath), "dub.srt")); !os.IsNotExist(err) {
		t.Fatalf("expected no subtitles, stat err = %v", err)
	}

	out, _, err = runCLI(t, []string{"jobs", "list"}, configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, report.JobID)
	requireContains(t, out, "completed")
	requireContains(t, out, "100%")

	out, _, err = runCLI(t, []string{"jobs", "list", "--status", "failed"}, configPath)
	if err != nil {
		t.Fatalf("jobs list --status: %v", err)
	}
	requireContains(t, out, "No jobs recorded")

	out, _, err = runCLI(t, []string{"jobs", "show", report.JobID, "--segments"}, configPath)
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	requireContains(t, out, "Good morning to you.")
	requireContains(t, out, "hola hola hola hola")
	requireContains(t, out, "Serialized clips")

	out, _, err = runCLI(t, []string{"jobs", "show", report.JobID, "--json", "--segments"}, configPath)
	if err != nil {
		t.Fatalf("jobs show --json: %v", err)
	}
	var detail struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Segments []struct {
			TranslatedText string `json:"translated_text"`
			VoiceID        string `json:"voice_id"`
		} `json:"segments"`
	}
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if detail.ID != report.JobID || detail.Status != "completed" || len(detail.Segments) != 2 {
		t.Fatalf("unexpected job detail: %+v", detail)
	}
	if detail.Segments[0].VoiceID == "" {
		t.Fatal("expected voice on stored segment")
	}
}

func TestDubMissingTranscriptFailsAndIsRecorded(t *testing.T) {
	clearProviderEnv(t)
	server := newFakeProviderServer(t)
	cfg := dubTestConfig(t, server)
	configPath := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, []string{"dub", filepath.Join(testsupport.BaseDir(cfg), "missing.json")}, configPath)
	if err == nil {
		t.Fatal("expected error for missing transcript")
	}
	if server.chatCalls.Load() != 0 || server.speechCalls.Load() != 0 {
		t.Fatal("providers called for a failed load")
	}

	out, _, err := runCLI(t, []string{"jobs", "list", "--status", "failed"}, configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "failed")
}

func TestJobsShowUnknownID(t *testing.T) {
	clearProviderEnv(t)
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	if _, _, err := runCLI(t, []string{"jobs", "show", "nope"}, configPath); err == nil {
		t.Fatal("expected not-found error")
	}
	out, _, err := runCLI(t, []string{"jobs", "list"}, configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "No jobs recorded")
}

func TestJobsListRejectsUnknownStatus(t *testing.T) {
	clearProviderEnv(t)
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, []string{"jobs", "list", "--status", "paused"}, configPath)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	requireContains(t, err.Error(), "paused")
}
