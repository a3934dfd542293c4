package app

import (
	"cmp"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/chirps/audio"
	"go.aimuz.me/chirps/clipboard"
	"go.aimuz.me/chirps/config"
	"go.aimuz.me/chirps/crop"
	"go.aimuz.me/chirps/heatmap"
	"go.aimuz.me/chirps/hotkey"
	"go.aimuz.me/chirps/internal/types"
	"go.aimuz.me/chirps/langdetect"
	"go.aimuz.me/chirps/player"
	"go.aimuz.me/chirps/reader"
	"go.aimuz.me/chirps/recorder"
	"go.aimuz.me/chirps/store"
	"go.aimuz.me/chirps/stt"
)

var (
	// ErrEmptyRecording is returned when a recording or upload holds no audio.
	ErrEmptyRecording = errors.New("no audio recorded")
	// ErrNoActiveTeam is returned when sharing without an active team.
	ErrNoActiveTeam = errors.New("no active team")
	// ErrNoTranscript is returned when copying a chirp that has no transcript.
	ErrNoTranscript = errors.New("chirp has no transcript")
	// ErrStoreUnavailable is returned by chirp and team calls when no store
	// could be opened.
	ErrStoreUnavailable = errors.New("store unavailable")
)

const (
	transcriptionProvider = "whisper-api"
	transcribeTimeout     = time.Minute
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; editing lives in EditSession.
type Service struct {
	cfg    *config.Config
	store  *store.Store
	stt    *stt.Registry
	hotkey *hotkey.Manager
	player playback

	// UI references - set via Init
	app    *application.App
	window application.Window
	notify func(name string, data any) // overrides app events when set

	recording RecordingAdapter

	mu      sync.Mutex
	session *EditSession

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}
	s.cfg = cfg

	s.setupStore()
	s.setupSTT()
	s.player = player.New()
	s.recording.rec = recorder.New(recorder.Config{
		SampleRate:  cfg.RecordSampleRate,
		MaxDuration: time.Duration(cfg.MaxRecordSeconds) * time.Second,
	})

	if cfg.HotkeysEnabled {
		s.setupHotkey()
	}
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.recording.IsRecording() {
		if _, err := s.recording.Stop(s.emit); err != nil {
			slog.Warn("stop recording", "error", err)
		}
	}
	if s.player != nil {
		s.player.Stop()
	}
	if s.stt != nil {
		if err := s.stt.Close(); err != nil {
			slog.Error("close transcription providers", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("close store", "error", err)
		}
	}
}

func (s *Service) setupStore() {
	path, err := config.DataDir("store")
	if err == nil {
		s.store, err = store.Open(path)
	}
	if err == nil {
		slog.Info("store initialized", "path", path)
		return
	}

	slog.Error("open store, chirps will not persist", "error", err)
	s.store, err = store.OpenInMemory()
	if err != nil {
		s.store = nil
		slog.Error("open in-memory store", "error", err)
	}
}

// db returns the chirp store, or ErrStoreUnavailable when none is open.
func (s *Service) db() (*store.Store, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return s.store, nil
}

// setupSTT registers the transcription provider from the current settings,
// replacing any previous one.
func (s *Service) setupSTT() {
	if s.stt == nil {
		s.stt = stt.NewRegistry()
	}
	s.stt.Register(stt.NewWhisperAPI(stt.WhisperAPIConfig{
		APIKey:  s.cfg.OpenAIAPIKey,
		BaseURL: s.cfg.OpenAIBaseURL,
		Model:   s.cfg.TranscriptionModel,
	}))
}

func (s *Service) setupHotkey() {
	s.hotkey = hotkey.NewManager(hotkey.DefaultBindings(), func(a hotkey.Action) {
		go s.runAction(a)
	})
	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// runAction performs a keyboard shortcut.
func (s *Service) runAction(action hotkey.Action) {
	var err error
	switch action {
	case hotkey.ActionRecord:
		s.showWindow()
		if s.recording.IsRecording() {
			_, err = s.StopRecording()
		} else {
			err = s.StartRecording()
		}
	case hotkey.ActionPlay:
		err = s.PlayCrop()
	case hotkey.ActionReset:
		_, err = s.ResetCrop()
	case hotkey.ActionSave:
		// Placement needs the page and position only the frontend knows.
		s.emit(EventSaveRequested, nil)
	case hotkey.ActionHeatmap:
		s.emit(EventHeatmapToggle, nil)
	}
	if err != nil {
		slog.Warn("hotkey action", "action", action, "error", err)
	}
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.notify != nil {
		s.notify(name, data)
		return
	}
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

func (s *Service) showWindow() {
	if s.window != nil {
		s.window.Show()
		s.window.Focus()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording
// ─────────────────────────────────────────────────────────────────────────────

// StartRecording discards the clip being edited and starts a new take.
func (s *Service) StartRecording() error {
	s.replaceSession(nil)
	return s.recording.Start(s.emit)
}

// StopRecording ends the take and opens it for editing.
func (s *Service) StopRecording() (types.SessionInfo, error) {
	buf, err := s.recording.Stop(s.emit)
	if err != nil {
		return types.SessionInfo{}, err
	}
	if buf.Len() == 0 {
		return types.SessionInfo{}, ErrEmptyRecording
	}

	sess, err := NewEditSessionFromBuffer(buf, s.sessionOptions())
	if err != nil {
		return types.SessionInfo{}, err
	}
	return s.openSession(sess), nil
}

// LoadAudio opens an existing clip for editing. An empty mime type is
// guessed from the bytes.
func (s *Service) LoadAudio(data []byte, mimeType string) (types.SessionInfo, error) {
	if len(data) == 0 {
		return types.SessionInfo{}, ErrEmptyRecording
	}
	if mimeType == "" {
		mimeType = sniffMime(data)
	}
	return s.openSession(NewEditSession(data, mimeType, s.sessionOptions())), nil
}

// GetSession describes the clip being edited.
func (s *Service) GetSession() types.SessionInfo {
	sess, err := s.current()
	if err != nil {
		return types.SessionInfo{}
	}
	return sessionInfo(sess)
}

// CancelSession drops the clip being edited, and any take in progress.
func (s *Service) CancelSession() {
	if s.recording.IsRecording() {
		if _, err := s.recording.Stop(s.emit); err != nil {
			slog.Warn("discard recording", "error", err)
		}
	}
	s.replaceSession(nil)
}

func (s *Service) sessionOptions() SessionOptions {
	return SessionOptions{MinSpan: s.cfg.MinCropSpan}
}

func (s *Service) current() (*EditSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	return s.session, nil
}

// replaceSession swaps the edited clip, cancelling the previous one.
func (s *Service) replaceSession(next *EditSession) {
	if s.player != nil {
		s.player.Stop()
	}

	s.mu.Lock()
	prev := s.session
	s.session = next
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

func (s *Service) openSession(sess *EditSession) types.SessionInfo {
	s.replaceSession(sess)
	s.emit(EventEnvelope, s.envelopeView(sess, s.cfg.WaveformWidth))

	info := sessionInfo(sess)
	slog.Info("chirp opened", "duration", info.Duration, "mime", info.MimeType, "can_crop", info.CanCrop)
	return info
}

func sessionInfo(sess *EditSession) types.SessionInfo {
	info := types.SessionInfo{
		Active:   true,
		CanCrop:  sess.CanCrop(),
		Duration: sess.Duration(),
		MimeType: sess.MimeType(),
	}
	if buf := sess.Buffer(); buf != nil {
		info.SampleRate = buf.SampleRate
		info.Channels = buf.NumChannels()
	}
	if err := sess.CropError(); err != nil && !info.CanCrop {
		info.Error = err.Error()
	}
	return info
}

func sniffMime(data []byte) string {
	switch audio.Sniff(data) {
	case "wav":
		return audio.MimeWAV
	case "ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Crop Editing
// ─────────────────────────────────────────────────────────────────────────────

// GetEnvelope returns the waveform of the edited clip for a surface width
// pixels wide. A width of zero uses the configured width.
func (s *Service) GetEnvelope(width int) (types.EnvelopeView, error) {
	sess, err := s.current()
	if err != nil {
		return types.EnvelopeView{}, err
	}
	if width <= 0 {
		width = s.cfg.WaveformWidth
	}
	return s.envelopeView(sess, width), nil
}

func (s *Service) envelopeView(sess *EditSession, width int) types.EnvelopeView {
	r, err := sess.Range()
	if err != nil {
		r = crop.Range{End: sess.Duration()}
	}
	return types.EnvelopeView{Peaks: sess.Envelope(width), Range: rangeView(r)}
}

// ClickWaveform handles a click at column x of a waveform width pixels
// wide. A click inside the window plays it; outside it moves the nearest
// boundary.
func (s *Service) ClickWaveform(x, width float64) (types.ClickView, error) {
	sess, err := s.current()
	if err != nil {
		return types.ClickView{}, err
	}
	res, err := sess.Click(x, width)
	if err != nil {
		return types.ClickView{}, err
	}

	switch res := res.(type) {
	case crop.PlayIntent:
		if err := s.play(sess, res.Range); err != nil {
			return types.ClickView{}, err
		}
		return types.ClickView{Action: types.ClickPlay, Range: rangeView(res.Range)}, nil
	case crop.RangeUpdated:
		view := rangeView(res.Range)
		s.emit(EventRange, view)
		return types.ClickView{Action: types.ClickRange, Handle: res.Handle.String(), Range: view}, nil
	}
	return types.ClickView{}, fmt.Errorf("unexpected click result %T", res)
}

// BeginDrag grabs the "start" or "end" handle.
func (s *Service) BeginDrag(handle string) error {
	h, err := parseHandle(handle)
	if err != nil {
		return err
	}
	sess, err := s.current()
	if err != nil {
		return err
	}
	return sess.PointerDown(h)
}

// DragWaveform moves the grabbed handle to column x.
func (s *Service) DragWaveform(x, width float64) (types.RangeView, error) {
	sess, err := s.current()
	if err != nil {
		return types.RangeView{}, err
	}
	r, moved, err := sess.PointerMove(x, width)
	if err != nil {
		return types.RangeView{}, err
	}
	if moved {
		s.emit(EventRange, rangeView(r))
	}
	return rangeView(r), nil
}

// EndDrag releases the grabbed handle.
func (s *Service) EndDrag() {
	if sess, err := s.current(); err == nil {
		sess.PointerUp()
	}
}

// ResetCrop restores the full-clip window.
func (s *Service) ResetCrop() (types.RangeView, error) {
	sess, err := s.current()
	if err != nil {
		return types.RangeView{}, err
	}
	r, err := sess.Reset()
	if err != nil {
		return types.RangeView{}, err
	}
	s.emit(EventRange, rangeView(r))
	return rangeView(r), nil
}

// AutoTrim fits the window to the audible part of the clip.
func (s *Service) AutoTrim() (types.TrimView, error) {
	sess, err := s.current()
	if err != nil {
		return types.TrimView{}, err
	}
	r, ok, err := sess.AutoTrim(audio.DefaultActivityThreshold)
	if err != nil {
		return types.TrimView{}, err
	}
	if ok {
		s.emit(EventRange, rangeView(r))
	}
	return types.TrimView{Range: rangeView(r), Trimmed: ok}, nil
}

// PlayCrop plays the current window.
func (s *Service) PlayCrop() error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	r, err := sess.Range()
	if err != nil {
		return err
	}
	return s.play(sess, r)
}

// StopPlayback stops any preview.
func (s *Service) StopPlayback() {
	s.player.Stop()
}

func (s *Service) play(sess *EditSession, r crop.Range) error {
	view := rangeView(r)
	err := s.player.Play(sess.Buffer(), r, func(err error) {
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("play chirp", "error", err)
		}
		s.emit(EventPlayDone, view)
	})
	if err != nil {
		return fmt.Errorf("play chirp: %w", err)
	}
	s.emit(EventPlay, view)
	return nil
}

func parseHandle(name string) (crop.Handle, error) {
	switch name {
	case crop.HandleStart.String():
		return crop.HandleStart, nil
	case crop.HandleEnd.String():
		return crop.HandleEnd, nil
	}
	return crop.HandleNone, fmt.Errorf("unknown crop handle %q", name)
}

func rangeView(r crop.Range) types.RangeView {
	return types.RangeView{Start: r.Start, End: r.End, Duration: r.Span()}
}

// ─────────────────────────────────────────────────────────────────────────────
// Chirps
// ─────────────────────────────────────────────────────────────────────────────

// SaveChirp crops the edited clip and places it on a page.
//
// When cropping fails the error is returned and cropping is disabled, so
// saving again places the uncropped original.
func (s *Service) SaveChirp(req types.PlaceRequest) (types.ChirpView, error) {
	sess, err := s.current()
	if err != nil {
		return types.ChirpView{}, err
	}
	db, err := s.db()
	if err != nil {
		return types.ChirpView{}, err
	}
	page, err := store.PageKey(req.PageURL)
	if err != nil {
		return types.ChirpView{}, fmt.Errorf("page key: %w", err)
	}

	clip, err := sess.Save()
	if err != nil {
		return types.ChirpView{}, err
	}

	c := &store.Chirp{
		Page:         page,
		Name:         strings.TrimSpace(req.Name),
		Color:        cmp.Or(req.Color, s.cfg.DefaultColor),
		Position:     store.Position{X: req.X, Y: req.Y},
		Audio:        clip.Audio,
		MimeType:     clip.MimeType,
		Duration:     clip.Duration,
		SelectedText: req.SelectedText,
	}
	if s.cfg.AutoTranscribe && clip.Buffer != nil {
		text, lang, err := s.transcribe(clip.Buffer)
		if err != nil {
			slog.Warn("transcribe chirp", "error", err)
		} else {
			c.Transcript, c.Language = text, lang
		}
	}

	if err := db.AddChirp(c); err != nil {
		return types.ChirpView{}, fmt.Errorf("save chirp: %w", err)
	}
	if req.ShareWithTeam {
		if _, err := shareWithActiveTeam(db, *c); err != nil {
			slog.Warn("share chirp", "id", c.ID, "error", err)
		}
	}

	s.mu.Lock()
	if s.session == sess {
		s.session = nil
	}
	s.mu.Unlock()

	view := chirpView(*c)
	s.emit(EventPlaced, view)
	slog.Info("chirp placed", "page", page, "id", c.ID, "duration", c.Duration, "cropped", clip.Cropped)
	return view, nil
}

// ListChirps returns the chirps on a page, oldest first.
func (s *Service) ListChirps(pageURL string) ([]types.ChirpView, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	page, err := store.PageKey(pageURL)
	if err != nil {
		return nil, fmt.Errorf("page key: %w", err)
	}
	chirps, err := db.ListChirps(page)
	if err != nil {
		return nil, err
	}
	return lo.Map(chirps, func(c store.Chirp, _ int) types.ChirpView { return chirpView(c) }), nil
}

// MoveChirp stores a new bubble position.
func (s *Service) MoveChirp(pageURL, id string, x, y float64) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	page, err := store.PageKey(pageURL)
	if err != nil {
		return fmt.Errorf("page key: %w", err)
	}
	return db.MoveChirp(page, id, store.Position{X: x, Y: y})
}

// DeleteChirp removes a chirp.
func (s *Service) DeleteChirp(pageURL, id string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	page, err := store.PageKey(pageURL)
	if err != nil {
		return fmt.Errorf("page key: %w", err)
	}
	if err := db.DeleteChirp(page, id); err != nil {
		return err
	}
	s.emit(EventDeleted, DeletedEvent{Page: page, ID: id})
	return nil
}

// ClearPage removes every chirp on a page.
func (s *Service) ClearPage(pageURL string) (int, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}
	page, err := store.PageKey(pageURL)
	if err != nil {
		return 0, fmt.Errorf("page key: %w", err)
	}
	n, err := db.ClearPage(page)
	if err != nil {
		return 0, err
	}
	slog.Info("page cleared", "page", page, "count", n)
	return n, nil
}

// TranscribeChirp transcribes a stored chirp and keeps the transcript.
func (s *Service) TranscribeChirp(pageURL, id string) (types.ChirpView, error) {
	db, err := s.db()
	if err != nil {
		return types.ChirpView{}, err
	}
	page, err := store.PageKey(pageURL)
	if err != nil {
		return types.ChirpView{}, fmt.Errorf("page key: %w", err)
	}
	c, err := db.GetChirp(page, id)
	if err != nil {
		return types.ChirpView{}, err
	}
	buf, err := audio.Decode(c.Audio)
	if err != nil {
		return types.ChirpView{}, fmt.Errorf("transcribe chirp: %w", err)
	}
	text, lang, err := s.transcribe(buf)
	if err != nil {
		return types.ChirpView{}, fmt.Errorf("transcribe chirp: %w", err)
	}
	c, err = db.SetTranscript(page, id, text, lang)
	if err != nil {
		return types.ChirpView{}, err
	}
	return chirpView(*c), nil
}

// CopyTranscript copies the transcript of a chirp to the clipboard.
func (s *Service) CopyTranscript(pageURL, id string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	page, err := store.PageKey(pageURL)
	if err != nil {
		return fmt.Errorf("page key: %w", err)
	}
	c, err := db.GetChirp(page, id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(c.Transcript) == "" {
		return ErrNoTranscript
	}
	if s.app == nil {
		return errors.New("clipboard unavailable")
	}
	return clipboard.SetText(s.app, c.Transcript)
}

// transcribe returns the transcript of a clip and its language, detected
// from the text when the provider does not report one.
func (s *Service) transcribe(buf *audio.Buffer) (text, lang string, err error) {
	p, err := s.stt.Ready(transcriptionProvider)
	if err != nil {
		return "", "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
	defer cancel()

	res, err := p.Transcribe(ctx, buf, s.cfg.TranscriptionLanguage)
	if err != nil {
		return "", "", err
	}

	lang = res.Language
	if lang == "" {
		if d := langdetect.Detect(res.Text); d.Code != langdetect.Undetermined {
			lang = d.Code
		}
	}
	return res.Text, lang, nil
}

func chirpView(c store.Chirp) types.ChirpView {
	v := types.ChirpView{
		ID:               c.ID,
		Page:             c.Page,
		Name:             c.Name,
		Color:            c.Color,
		ColorValue:       config.ColorValue(c.Color),
		X:                c.Position.X,
		Y:                c.Position.Y,
		Duration:         c.Duration,
		MimeType:         c.MimeType,
		Transcript:       c.Transcript,
		Language:         c.Language,
		SelectedText:     c.SelectedText,
		CreatedAt:        c.CreatedAt.UnixMilli(),
		SharedByUsername: c.SharedByUsername,
	}
	if len(c.Audio) > 0 {
		mediaType, _, _ := strings.Cut(c.MimeType, ";")
		v.AudioURL = "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(c.Audio)
	}
	if c.Language != "" {
		v.LanguageName = langdetect.Name(c.Language)
	}
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// Heatmap
// ─────────────────────────────────────────────────────────────────────────────

// Heatmap groups the chirps on a page into hot spots. An empty mode uses
// the configured one; team mode with no active team is empty.
func (s *Service) Heatmap(pageURL, mode string) (types.HeatmapView, error) {
	db, err := s.db()
	if err != nil {
		return types.HeatmapView{}, err
	}
	page, err := store.PageKey(pageURL)
	if err != nil {
		return types.HeatmapView{}, fmt.Errorf("page key: %w", err)
	}

	m := heatmap.ParseMode(cmp.Or(mode, s.cfg.HeatmapMode))
	chirps, err := heatmapChirps(db, m, page)
	if err != nil {
		return types.HeatmapView{}, err
	}

	spots := heatmap.Calculate(chirps)
	return types.HeatmapView{
		Mode:    m,
		Spots:   spots,
		Legend:  heatmap.Legend(),
		Summary: heatmap.Summary(spots),
	}, nil
}

func heatmapChirps(db *store.Store, m heatmap.Mode, page string) ([]store.Chirp, error) {
	if m != heatmap.ModeTeam {
		return db.ListChirps(page)
	}
	team, err := db.ActiveTeam()
	if err != nil || team == nil {
		return nil, err
	}
	return db.TeamChirpsForPage(team.Code, page)
}

// ─────────────────────────────────────────────────────────────────────────────
// Profile & Teams
// ─────────────────────────────────────────────────────────────────────────────

// GetProfile returns the local profile.
func (s *Service) GetProfile() (*store.Profile, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return db.Profile()
}

// SetUsername renames the local profile.
func (s *Service) SetUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("username required")
	}
	db, err := s.db()
	if err != nil {
		return err
	}
	return db.SetUsername(name)
}

// CreateTeam creates a team and joins it.
func (s *Service) CreateTeam(name string) (*store.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("team name required")
	}
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return db.CreateTeam(name)
}

// JoinTeam joins a team by its code.
func (s *Service) JoinTeam(code string) (*store.Team, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return db.JoinTeam(normalizeCode(code))
}

// LeaveTeam leaves a team.
func (s *Service) LeaveTeam(code string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return db.LeaveTeam(normalizeCode(code))
}

// SetActiveTeam selects the team chirps are shared with.
func (s *Service) SetActiveTeam(code string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return db.SetActiveTeam(normalizeCode(code))
}

// GetActiveTeam returns the active team, or nil.
func (s *Service) GetActiveTeam() (*store.Team, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return db.ActiveTeam()
}

// GetTeams returns the teams the user belongs to.
func (s *Service) GetTeams() ([]store.Team, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return db.UserTeams()
}

// ShareChirp shares a stored chirp with the active team.
func (s *Service) ShareChirp(pageURL, id string) (types.ChirpView, error) {
	db, err := s.db()
	if err != nil {
		return types.ChirpView{}, err
	}
	page, err := store.PageKey(pageURL)
	if err != nil {
		return types.ChirpView{}, fmt.Errorf("page key: %w", err)
	}
	c, err := db.GetChirp(page, id)
	if err != nil {
		return types.ChirpView{}, err
	}
	shared, err := shareWithActiveTeam(db, *c)
	if err != nil {
		return types.ChirpView{}, err
	}
	return chirpView(*shared), nil
}

func shareWithActiveTeam(db *store.Store, c store.Chirp) (*store.Chirp, error) {
	team, err := db.ActiveTeam()
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrNoActiveTeam
	}
	return db.ShareChirp(c, team.Code)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ─────────────────────────────────────────────────────────────────────────────
// Reader
// ─────────────────────────────────────────────────────────────────────────────

// ReadArticle extracts the main article from a page's HTML and splits it
// into chunks for the speech engine.
func (s *Service) ReadArticle(pageHTML string) (types.ArticleView, error) {
	a, err := reader.Parse(strings.NewReader(pageHTML), reader.DefaultChunkSize)
	if err != nil {
		return types.ArticleView{}, err
	}

	v := types.ArticleView{
		Title:      a.Title,
		Chunks:     a.Chunks,
		Characters: utf8.RuneCountInString(a.Text),
	}
	if d := langdetect.Detect(a.Text); d.Code != langdetect.Undetermined {
		v.Language, v.LanguageName = d.Code, d.Name
	}
	slog.Info("article extracted", "chars", v.Characters, "chunks", len(v.Chunks), "language", v.Language)
	return v, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetSettings returns a copy of the configuration.
func (s *Service) GetSettings() config.Config {
	return *s.cfg
}

// SetAPIKey stores the OpenAI credentials and reloads the provider.
func (s *Service) SetAPIKey(key, baseURL string) error {
	if err := s.cfg.SetAPIKey(key, baseURL); err != nil {
		return err
	}
	s.setupSTT()
	return nil
}

// SetTranscription updates transcript settings and reloads the provider.
func (s *Service) SetTranscription(model, language string, auto bool) error {
	if err := s.cfg.SetTranscription(model, language, auto); err != nil {
		return err
	}
	s.setupSTT()
	return nil
}

// IsTranscriptionReady reports whether transcripts can be made.
func (s *Service) IsTranscriptionReady() bool {
	_, err := s.stt.Ready(transcriptionProvider)
	return err == nil
}

// SetDefaultColor changes the colour new chirps start with.
func (s *Service) SetDefaultColor(name string) error {
	return s.cfg.SetDefaultColor(name)
}

// SetHeatmapMode changes the default heatmap mode.
func (s *Service) SetHeatmapMode(mode string) error {
	return s.cfg.SetHeatmapMode(mode)
}

// SetHotkeysEnabled turns the global shortcuts on or off.
func (s *Service) SetHotkeysEnabled(enabled bool) error {
	if err := s.cfg.SetHotkeysEnabled(enabled); err != nil {
		return err
	}
	switch {
	case enabled && s.hotkey == nil:
		s.setupHotkey()
	case !enabled && s.hotkey != nil:
		s.hotkey.Stop()
		s.hotkey = nil
	}
	return nil
}

// GetColors returns the bubble colours.
func (s *Service) GetColors() []types.ColorOption {
	return lo.Map(config.ColorNames(), func(name string, _ int) types.ColorOption {
		return types.ColorOption{Name: name, Value: config.ColorValue(name)}
	})
}

// GetHotkeys returns the keyboard shortcuts.
func (s *Service) GetHotkeys() []types.HotkeyView {
	bindings := hotkey.DefaultBindings()
	if s.hotkey != nil {
		bindings = s.hotkey.Bindings()
	}
	return lo.Map(bindings, func(b hotkey.Binding, _ int) types.HotkeyView {
		return types.HotkeyView{Action: string(b.Action), Chord: b.Chord(), Label: b.Label}
	})
}
