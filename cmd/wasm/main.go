//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/lumabooth/luma/internal/booth"
	"github.com/lumabooth/luma/internal/config"
	"github.com/lumabooth/luma/internal/store"
	"github.com/lumabooth/luma/pkg/ambient"
	"github.com/lumabooth/luma/pkg/capture"
	"github.com/lumabooth/luma/pkg/compose"
	"github.com/lumabooth/luma/pkg/editor"
	"github.com/lumabooth/luma/pkg/filter"
	"github.com/lumabooth/luma/pkg/response"
)

// Version info
const Version = "1.0.0"

// Global state
var (
	cfg      *config.Config
	sqlStore *store.SQLiteStore
	bus      *ambient.Bus
	svc      *booth.Service
	field    *ambient.Field
	logger   *zap.Logger

	cancelCapture context.CancelFunc
)

func main() {
	logger, _ = zap.NewDevelopment()
	if logger == nil {
		logger = zap.NewNop()
	}

	fmt.Println("[Luma] WASM Ready v" + Version)

	js.Global().Set("Luma", js.ValueOf(map[string]interface{}{
		"version":    js.FuncOf(getVersion),
		"initialize": js.FuncOf(initialize),
		// Memory store API
		"listMemories":    js.FuncOf(listMemories),
		"getMemory":       js.FuncOf(getMemory),
		"saveMemory":      js.FuncOf(saveMemory),
		"deleteMemory":    js.FuncOf(deleteMemory),
		"updateMemory":    js.FuncOf(updateMemory),
		"toggleFavorite":  js.FuncOf(toggleFavorite),
		"similarMemories": js.FuncOf(similarMemories),
		"journal":         js.FuncOf(journal),
		// Filters + editor
		"listFilters": js.FuncOf(listFilters),
		"applyFilter": js.FuncOf(applyFilter),
		"editPhoto":   js.FuncOf(editPhoto),
		// Insight
		"suggestMood": js.FuncOf(suggestMood),
		"keywords":    js.FuncOf(keywordsFn),
		// Capture
		"startCapture": js.FuncOf(startCapture),
		"cancelNow":    js.FuncOf(cancelNow),
		// Collage
		"collageAddImage":    js.FuncOf(collageAddImage),
		"collageAddSticker":  js.FuncOf(collageAddSticker),
		"collageApplyLayout": js.FuncOf(collageApplyLayout),
		"collageSelect":      js.FuncOf(collageSelect),
		"collageRotate":      js.FuncOf(collageRotate),
		"collageDelete":      js.FuncOf(collageDelete),
		"collageClear":       js.FuncOf(collageClear),
		"collageItems":       js.FuncOf(collageItems),
		"collageFlatten":     js.FuncOf(collageFlatten),
		"flattenAndSave":     js.FuncOf(flattenAndSave),
		// Photo strip
		"saveStrip":   js.FuncOf(saveStrip),
		"stripThemes": js.FuncOf(stripThemes),
		// Ambient particles
		"particlesInit": js.FuncOf(particlesInit),
		"particlesStep": js.FuncOf(particlesStep),
		// Preferences
		"getPrefs": js.FuncOf(getPrefs),
		"setPrefs": js.FuncOf(setPrefs),
		// Store Export/Import (OPFS sync)
		"storeExport": js.FuncOf(storeExport),
		"storeImport": js.FuncOf(storeImport),
	}))

	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// initialize: [dsn string (optional, defaults to in-memory)]
func initialize(this js.Value, args []js.Value) interface{} {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return errorResult("config: " + err.Error())
	}

	dsn := ":memory:"
	if len(args) > 0 && args[0].String() != "" {
		dsn = args[0].String()
	}
	sqlStore, err = store.NewSQLiteStoreWithDSN(dsn, logger)
	if err != nil {
		return errorResult("store: " + err.Error())
	}

	if err := config.LoadPrefs(sqlStore, &cfg.Prefs); err != nil {
		logger.Warn("prefs not loaded", zap.Error(err))
	}

	bus = ambient.NewBus(logger)
	forwardAmbientToJS(bus)

	svc, err = booth.NewService(sqlStore, bus, cfg, logger)
	if err != nil {
		return errorResult("service: " + err.Error())
	}
	return successResult("initialized")
}

// forwardAmbientToJS mirrors bus events onto Luma.onAmbientEvent when
// the page defines it.
func forwardAmbientToJS(b *ambient.Bus) {
	topics := []ambient.Topic{
		ambient.TopicSaved, ambient.TopicDeleted, ambient.TopicShutter,
		ambient.TopicCountdown, ambient.TopicStickerAdded,
	}
	for _, topic := range topics {
		b.Subscribe(topic, func(ev ambient.Event) {
			cb := js.Global().Get("Luma").Get("onAmbientEvent")
			if cb.Type() != js.TypeFunction {
				return
			}
			payload, _ := json.Marshal(ev.Payload)
			cb.Invoke(string(ev.Topic), string(payload))
		})
	}
}

// =============================================================================
// Memory store API
// =============================================================================

func listMemories(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	memories, err := svc.List()
	if err != nil {
		return errorResult(err.Error())
	}
	out, err := response.MarshalSlimList(memories, 0)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(out)
}

func journal(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	memories, err := svc.Journal()
	if err != nil {
		return errorResult(err.Error())
	}
	out, err := response.MarshalSlimList(memories, 0)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(out)
}

// getMemory: [id string] returns the full record including the image payload
func getMemory(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	m, err := svc.Get(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	if m == nil {
		return errorResult("not found: " + args[0].String())
	}
	out, _ := json.Marshal(m)
	return string(out)
}

// saveMemory: [image string, caption string, mood string]
func saveMemory(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1+ args: image, [caption], [mood]")
	}
	caption, mood := "", ""
	if len(args) > 1 {
		caption = args[1].String()
	}
	if len(args) > 2 {
		mood = args[2].String()
	}
	m, err := svc.SavePayload(args[0].String(), caption, store.Mood(mood))
	if err != nil {
		return errorResult(err.Error())
	}
	return successResult(m.ID)
}

// deleteMemory: [id string]
func deleteMemory(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	if err := svc.Delete(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("deleted")
}

// updateMemory: [id string, patchJSON string]
func updateMemory(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 2 {
		return errorResult("requires 2 args: id, patchJSON")
	}
	var patch store.MemoryUpdate
	if err := json.Unmarshal([]byte(args[1].String()), &patch); err != nil {
		return errorResult("patch json: " + err.Error())
	}
	if err := svc.Update(args[0].String(), patch); err != nil {
		return errorResult(err.Error())
	}
	return successResult("updated")
}

// toggleFavorite: [id string]
func toggleFavorite(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	on, err := svc.ToggleFavorite(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	out, _ := json.Marshal(map[string]interface{}{"isFavorite": on})
	return string(out)
}

// similarMemories: [id string, k int]
func similarMemories(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 2 {
		return errorResult("requires 2 args: id, k")
	}
	ids, err := svc.Similar(args[0].String(), args[1].Int())
	if err != nil {
		return errorResult(err.Error())
	}
	out, _ := json.Marshal(ids)
	return string(out)
}

// =============================================================================
// Filters
// =============================================================================

func listFilters(this js.Value, args []js.Value) interface{} {
	out, _ := json.Marshal(filter.All())
	return string(out)
}

// applyFilter: [image dataURI, filterName string]
func applyFilter(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: image, filterName")
	}
	buf, err := booth.DecodeDataURI(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	filter.Apply(buf, filter.Name(args[1].String()))
	payload, err := booth.EncodePNGDataURI(buf)
	if err != nil {
		return errorResult(err.Error())
	}
	return payload
}

// editPhoto: [image dataURI, adjustmentsJSON string]
// Adjustments: quarterTurns, brightness/contrast/saturation (100 =
// identity) and an optional percent-coordinate crop box.
func editPhoto(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: image, adjustmentsJSON")
	}
	adj := editor.Default()
	if err := json.Unmarshal([]byte(args[1].String()), &adj); err != nil {
		return errorResult("adjustments json: " + err.Error())
	}
	buf, err := booth.DecodeDataURI(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	out, err := editor.Apply(buf, adj)
	if err != nil {
		return errorResult(err.Error())
	}
	payload, err := booth.EncodePNGDataURI(out)
	if err != nil {
		return errorResult(err.Error())
	}
	return payload
}

// =============================================================================
// Insight
// =============================================================================

// suggestMood: [reflection string]
func suggestMood(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: reflection")
	}
	mood, ok := svc.SuggestMood(args[0].String())
	out, _ := json.Marshal(map[string]interface{}{"mood": string(mood), "matched": ok})
	return string(out)
}

// keywords: [reflection string, limit int]
func keywordsFn(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 2 {
		return errorResult("requires 2 args: reflection, limit")
	}
	out, _ := json.Marshal(svc.Keywords(args[0].String(), args[1].Int()))
	return string(out)
}

// =============================================================================
// Capture
// =============================================================================

// startCapture: [camera object, filterName string]
// The camera object implements { acquire(w, h) bool, grab() frame,
// release() } where frame is { width, height, pixels: Uint8ClampedArray }.
// Runs asynchronously; invokes Luma.onCaptureComplete(idsJSON, errMsg)
// when the session ends.
func startCapture(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 2 {
		return errorResult("requires 2 args: camera, filterName")
	}
	if cancelCapture != nil {
		return errorResult("capture already running")
	}

	src := &jsFrameSource{camera: args[0]}
	name := filter.Name(args[1].String())

	ctx, cancel := context.WithCancel(context.Background())
	cancelCapture = cancel

	go func() {
		shots, err := svc.Capture(ctx, src, name)
		cancelCapture = nil

		var ids []string
		for _, shot := range shots {
			m, saveErr := svc.SaveFrame(shot.Frame, "", "")
			if saveErr != nil {
				logger.Warn("shot not saved", zap.Int("index", shot.Index), zap.Error(saveErr))
				continue
			}
			ids = append(ids, m.ID)
		}

		cb := js.Global().Get("Luma").Get("onCaptureComplete")
		if cb.Type() != js.TypeFunction {
			return
		}
		idsJSON, _ := json.Marshal(ids)
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		cb.Invoke(string(idsJSON), errMsg)
	}()

	return successResult("started")
}

func cancelNow(this js.Value, args []js.Value) interface{} {
	if cancelCapture == nil {
		return errorResult("no capture running")
	}
	cancelCapture()
	return successResult("canceling")
}

// jsFrameSource adapts a JS camera object to the FrameSource interface.
type jsFrameSource struct {
	camera js.Value
}

func (j *jsFrameSource) Acquire(ctx context.Context, hint capture.Resolution) error {
	ok := j.camera.Call("acquire", hint.Width, hint.Height)
	if ok.Type() == js.TypeBoolean && !ok.Bool() {
		return fmt.Errorf("camera acquire refused")
	}
	return nil
}

func (j *jsFrameSource) Grab() (*filter.Buffer, error) {
	frame := j.camera.Call("grab")
	if frame.IsNull() || frame.IsUndefined() {
		return nil, fmt.Errorf("camera returned no frame")
	}
	w := frame.Get("width").Int()
	h := frame.Get("height").Int()
	pixels := frame.Get("pixels")

	buf := filter.NewBuffer(w, h)
	if n := js.CopyBytesToGo(buf.Pix, pixels); n != len(buf.Pix) {
		return nil, fmt.Errorf("short frame copy: %d of %d bytes", n, len(buf.Pix))
	}
	return buf, nil
}

func (j *jsFrameSource) Release() error {
	j.camera.Call("release")
	return nil
}

// =============================================================================
// Collage
// =============================================================================

// collageAddImage: [image dataURI]
func collageAddImage(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: image")
	}
	buf, err := booth.DecodeDataURI(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	it := svc.Scene().AddImage(buf)
	out, _ := json.Marshal(it)
	return string(out)
}

// collageAddSticker: [glyph string]
func collageAddSticker(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: glyph")
	}
	svc.AddSticker(args[0].String())
	return successResult("added")
}

// collageApplyLayout: [layout string]
func collageApplyLayout(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: layout")
	}
	svc.Scene().ApplyLayout(compose.Layout(args[0].String()))
	return successResult("applied")
}

// collageSelect: [id int]
func collageSelect(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	if !svc.Scene().Select(args[0].Int()) {
		return errorResult("no such item")
	}
	return successResult("selected")
}

func collageRotate(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if !svc.Scene().RotateActive() {
		return errorResult("nothing selected")
	}
	return successResult("rotated")
}

func collageDelete(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if !svc.Scene().DeleteActive() {
		return errorResult("nothing selected")
	}
	return successResult("deleted")
}

func collageClear(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	svc.Scene().Clear()
	return successResult("cleared")
}

func collageItems(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	out, _ := json.Marshal(svc.Scene().Items())
	return string(out)
}

// collageFlatten: [multiplier int (optional)] , returns a PNG data-URI
func collageFlatten(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	multiplier := cfg.Export.Multiplier
	if len(args) > 0 && args[0].Int() > 0 {
		multiplier = args[0].Int()
	}
	flat, err := svc.Scene().Flatten(multiplier)
	if err != nil {
		return errorResult(err.Error())
	}
	payload, err := booth.EncodePNGDataURI(flat)
	if err != nil {
		return errorResult(err.Error())
	}
	return payload
}

// flattenAndSave: [caption string]
func flattenAndSave(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	caption := ""
	if len(args) > 0 {
		caption = args[0].String()
	}
	m, err := svc.FlattenAndSave(caption)
	if err != nil {
		return errorResult(err.Error())
	}
	return successResult(m.ID)
}

// =============================================================================
// Photo strip
// =============================================================================

// saveStrip: [photosJSON string, theme string, caption string (optional)]
// photosJSON: [{"image": dataURI, "caption": string, "glyphs": [string]}]
func saveStrip(this js.Value, args []js.Value) interface{} {
	if svc == nil {
		return errorResult("not initialized")
	}
	if len(args) < 2 {
		return errorResult("requires 2+ args: photosJSON, theme, [caption]")
	}
	var specs []struct {
		Image   string   `json:"image"`
		Caption string   `json:"caption"`
		Glyphs  []string `json:"glyphs"`
	}
	if err := json.Unmarshal([]byte(args[0].String()), &specs); err != nil {
		return errorResult("photos json: " + err.Error())
	}
	photos := make([]compose.StripPhoto, 0, len(specs))
	for _, sp := range specs {
		buf, err := booth.DecodeDataURI(sp.Image)
		if err != nil {
			return errorResult(err.Error())
		}
		photos = append(photos, compose.StripPhoto{Image: buf, Caption: sp.Caption, Glyphs: sp.Glyphs})
	}
	caption := ""
	if len(args) > 2 {
		caption = args[2].String()
	}
	m, err := svc.SaveStrip(photos, compose.StripTheme(args[1].String()), caption)
	if err != nil {
		return errorResult(err.Error())
	}
	return successResult(m.ID)
}

// stripThemes lists the bouquet themes with their caption suggestions.
func stripThemes(this js.Value, args []js.Value) interface{} {
	type themeInfo struct {
		Name        string   `json:"name"`
		Suggestions []string `json:"suggestions"`
	}
	themes := compose.StripThemes()
	infos := make([]themeInfo, 0, len(themes))
	for _, th := range themes {
		infos = append(infos, themeInfo{Name: string(th), Suggestions: th.Suggestions()})
	}
	out, _ := json.Marshal(infos)
	return string(out)
}

// =============================================================================
// Ambient particles
// =============================================================================

// particlesInit: [width, height, count]
func particlesInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("requires 3 args: width, height, count")
	}
	field = ambient.NewField(float64(args[0].Int()), float64(args[1].Int()), args[2].Int(), nil)
	return successResult("ready")
}

// particlesStep advances the field by one frame at the configured
// animation speed and returns the particle positions.
func particlesStep(this js.Value, args []js.Value) interface{} {
	if field == nil {
		return errorResult("particles not initialized")
	}
	speed := 1.0
	if cfg != nil {
		speed = cfg.Prefs.AnimationSpeed
	}
	field.Step(speed)
	out, _ := json.Marshal(field.Particles())
	return string(out)
}

// =============================================================================
// Preferences
// =============================================================================

func getPrefs(this js.Value, args []js.Value) interface{} {
	if cfg == nil {
		return errorResult("not initialized")
	}
	out, _ := json.Marshal(cfg.Prefs)
	return string(out)
}

// setPrefs: [prefsJSON string]
func setPrefs(this js.Value, args []js.Value) interface{} {
	if cfg == nil || sqlStore == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: prefsJSON")
	}
	p := cfg.Prefs
	if err := json.Unmarshal([]byte(args[0].String()), &p); err != nil {
		return errorResult("prefs json: " + err.Error())
	}
	if err := config.SavePrefs(sqlStore, p); err != nil {
		return errorResult(err.Error())
	}
	cfg.Prefs = p
	return successResult("saved")
}

// =============================================================================
// Store Export/Import (OPFS sync)
// =============================================================================

func storeExport(this js.Value, args []js.Value) interface{} {
	if sqlStore == nil {
		return errorResult("not initialized")
	}
	data, err := sqlStore.Export()
	if err != nil {
		return errorResult(err.Error())
	}
	return string(data)
}

// storeImport: [dataJSON string]
func storeImport(this js.Value, args []js.Value) interface{} {
	if sqlStore == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: dataJSON")
	}
	if err := sqlStore.Import([]byte(args[0].String())); err != nil {
		return errorResult(err.Error())
	}
	return successResult("imported")
}

// =============================================================================
// Helpers
// =============================================================================

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
