package ingest

import (
	"context"
	"errors"
	"image"
	"image/color"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/anypb"
)

// grpcConn serves register on a local listener and returns a client option
// dialled to it.
func grpcConn(t *testing.T, register func(*grpc.Server)) option.ClientOption {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer()
	register(srv)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///"+lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return option.WithGRPCConn(conn)
}

type fakeSpeech struct {
	speechpb.UnimplementedSpeechServer
	results []string
	got     *speechpb.LongRunningRecognizeRequest
}

func (f *fakeSpeech) LongRunningRecognize(_ context.Context, req *speechpb.LongRunningRecognizeRequest) (*longrunningpb.Operation, error) {
	f.got = req
	resp := &speechpb.LongRunningRecognizeResponse{}
	for _, r := range f.results {
		resp.Results = append(resp.Results, &speechpb.SpeechRecognitionResult{
			Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: r}},
		})
	}
	packed, err := anypb.New(resp)
	if err != nil {
		return nil, err
	}
	return &longrunningpb.Operation{
		Name:   "operations/speech-1",
		Done:   true,
		Result: &longrunningpb.Operation_Response{Response: packed},
	}, nil
}

func newTestSpeech(t *testing.T, fake *fakeSpeech) *GoogleSpeechTranscriber {
	t.Helper()
	conn := grpcConn(t, func(s *grpc.Server) { speechpb.RegisterSpeechServer(s, fake) })
	tr, err := newGoogleSpeechTranscriber(context.Background(), nil, conn)
	if err != nil {
		t.Fatalf("new transcriber: %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}

func writeSizedAudio(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGoogleSpeech_TranscribeFile(t *testing.T) {
	fake := &fakeSpeech{results: []string{"Cells are  the unit", "of life."}}
	tr := newTestSpeech(t, fake)

	got, err := tr.TranscribeFile(context.Background(), writeSizedAudio(t, "lecture.FLAC", 64), "az")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Cells are the unit of life." {
		t.Fatalf("transcript = %q", got)
	}
	cfg := fake.got.GetConfig()
	if cfg.GetEncoding() != speechpb.RecognitionConfig_FLAC || cfg.GetLanguageCode() != "az-AZ" {
		t.Fatalf("config = %v", cfg)
	}
	if len(fake.got.GetAudio().GetContent()) != 64 {
		t.Fatalf("audio content = %d bytes", len(fake.got.GetAudio().GetContent()))
	}
}

func TestGoogleSpeech_EmptyTranscript(t *testing.T) {
	tr := newTestSpeech(t, &fakeSpeech{})
	_, err := tr.TranscribeFile(context.Background(), writeSizedAudio(t, "quiet.wav", 16), "")
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestGoogleSpeech_CheckAudio(t *testing.T) {
	fake := &fakeSpeech{results: []string{"never"}}
	tr := newTestSpeech(t, fake)

	tests := []struct {
		name string
		path string
		want error
	}{
		{"m4a", writeSizedAudio(t, "talk.m4a", 16), ErrUnsupportedFileType},
		{"mp4", writeSizedAudio(t, "talk.mp4", 16), ErrUnsupportedFileType},
		{"too large", writeSizedAudio(t, "long.mp3", googleInlineAudioLimit+1), ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tr.CheckAudio(tt.path); !errors.Is(err, tt.want) {
				t.Fatalf("CheckAudio = %v, want %v", err, tt.want)
			}
			if _, err := tr.TranscribeFile(context.Background(), tt.path, ""); !errors.Is(err, tt.want) {
				t.Fatalf("TranscribeFile = %v, want %v", err, tt.want)
			}
		})
	}
	if fake.got != nil {
		t.Fatal("rejected audio reached the service")
	}
	if err := tr.CheckAudio(writeSizedAudio(t, "ok.ogg", 16)); err != nil {
		t.Fatalf("ogg rejected: %v", err)
	}
}

func TestIngestAudio_RejectedByTranscriber(t *testing.T) {
	s := openTestStore(t)
	tr := newTestSpeech(t, &fakeSpeech{})
	svc := NewService(s.SourceRepo(), Deps{Transcriber: tr}, nil)

	_, err := svc.IngestAudio(context.Background(), FileRequest{Path: writeSizedAudio(t, "talk.m4a", 16)})
	if !errors.Is(err, ErrUnsupportedFileType) || !IsValidation(err) {
		t.Fatalf("expected unsupported file type, got %v", err)
	}
	if n := countSources(t, s); n != 0 {
		t.Fatalf("expected no source record, got %d", n)
	}
}

type fakeVision struct {
	visionpb.UnimplementedImageAnnotatorServer
	text string
	fail string
	got  *visionpb.BatchAnnotateImagesRequest
}

func (f *fakeVision) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.got = req
	resp := &visionpb.AnnotateImageResponse{FullTextAnnotation: &visionpb.TextAnnotation{Text: f.text}}
	if f.fail != "" {
		resp = &visionpb.AnnotateImageResponse{Error: &statuspb.Status{Message: f.fail}}
	}
	return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{resp}}, nil
}

func newTestVision(t *testing.T, fake *fakeVision) *GoogleVisionRecognizer {
	t.Helper()
	conn := grpcConn(t, func(s *grpc.Server) { visionpb.RegisterImageAnnotatorServer(s, fake) })
	rec, err := newGoogleVisionRecognizer(context.Background(), conn)
	if err != nil {
		t.Fatalf("new recognizer: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func testPage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	return img
}

func TestGoogleVision_Recognize(t *testing.T) {
	fake := &fakeVision{text: "Photosynthesis\nconverts   light"}
	rec := newTestVision(t, fake)

	got, err := rec.Recognize(context.Background(), testPage(), "az")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Photosynthesis converts light" {
		t.Fatalf("text = %q", got)
	}
	req := fake.got.GetRequests()[0]
	if req.GetFeatures()[0].GetType() != visionpb.Feature_DOCUMENT_TEXT_DETECTION {
		t.Fatalf("features = %v", req.GetFeatures())
	}
	if hints := req.GetImageContext().GetLanguageHints(); len(hints) != 1 || hints[0] != "az" {
		t.Fatalf("language hints = %v", hints)
	}
	if !strings.HasPrefix(string(req.GetImage().GetContent()), "\x89PNG") {
		t.Fatal("page should be sent as PNG")
	}
}

func TestGoogleVision_AnnotateError(t *testing.T) {
	rec := newTestVision(t, &fakeVision{fail: "bad image"})
	_, err := rec.Recognize(context.Background(), testPage(), "")
	if err == nil || !strings.Contains(err.Error(), "bad image") {
		t.Fatalf("expected annotate error, got %v", err)
	}
}

func TestGoogleClients_MissingCredential(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := NewGoogleSpeechTranscriber(context.Background(), nil); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if _, err := NewGoogleVisionRecognizer(context.Background()); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}
