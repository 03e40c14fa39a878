package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/store"
)

// Load compiles every CUE file in dir into a Catalog. All errors are
// collected rather than failing fast, so an admin fixing a catalog sees
// the whole picture in one pass.
func Load(dir string) (*Catalog, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&CompileError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&CompileError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&CompileError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, []error{&CompileError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&CompileError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&CompileError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&CompileError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&CompileError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	cat, errs := Compile(value)
	if cat != nil {
		cat.FileCount = len(files)
	}
	return cat, errs
}

// Compile extracts the catalog from an already-built CUE value. Split from
// Load so tests can compile catalog snippets from strings.
func Compile(value cue.Value) (*Catalog, []error) {
	var errs []error
	cat := &Catalog{}

	eventsVal := value.LookupPath(cue.ParsePath("event"))
	if eventsVal.Exists() {
		iter, err := eventsVal.Fields()
		if err != nil {
			errs = append(errs, &CompileError{Code: ErrCodeBadEvent, Path: "event", Message: fmt.Sprintf("iterating events: %v", err)})
		} else {
			for iter.Next() {
				e, compileErrs := compileEvent(iter.Label(), iter.Value())
				if len(compileErrs) > 0 {
					errs = append(errs, compileErrs...)
					continue
				}
				cat.Events = append(cat.Events, e)
			}
		}
	}

	assetsVal := value.LookupPath(cue.ParsePath("asset"))
	if assetsVal.Exists() {
		kinds, err := assetsVal.Fields()
		if err != nil {
			errs = append(errs, &CompileError{Code: ErrCodeBadAsset, Path: "asset", Message: fmt.Sprintf("iterating assets: %v", err)})
		} else {
			for kinds.Next() {
				kind := store.AssetKind(kinds.Label())
				names, err := kinds.Value().Fields()
				if err != nil {
					errs = append(errs, &CompileError{Code: ErrCodeBadAsset, Path: "asset." + string(kind), Message: fmt.Sprintf("iterating assets: %v", err)})
					continue
				}
				for names.Next() {
					a, compileErr := compileAsset(kind, names.Label(), names.Value())
					if compileErr != nil {
						errs = append(errs, compileErr)
						continue
					}
					cat.Assets = append(cat.Assets, a)
				}
			}
		}
	}

	return cat, errs
}

// compileEvent parses one event struct. The slug is the CUE field label.
// Defaulting rules: missing tier means lowest priority; missing status
// means upcoming; evergreen events need no end date.
func compileEvent(slug string, v cue.Value) (event.Event, []error) {
	var errs []error
	badEvent := func(msg string) {
		errs = append(errs, &CompileError{Code: ErrCodeBadEvent, Path: "event." + slug, Message: msg, Pos: v.Pos()})
	}

	e := event.Event{
		// Deterministic ID so re-seeding the catalog never re-identifies
		// an event that stories already reference.
		ID:     "ev-" + slug,
		Slug:   slug,
		Status: event.StatusUpcoming,
	}

	e.Title = stringField(v, "title", &errs, slug, true)

	kind := stringField(v, "kind", &errs, slug, true)
	switch event.Kind(kind) {
	case event.KindOneTime, event.KindRecurring, event.KindEvergreen:
		e.Kind = event.Kind(kind)
	case "":
		// already reported missing
	default:
		badEvent(fmt.Sprintf("kind must be one of one-time, recurring, evergreen; got %q", kind))
	}

	if status := stringField(v, "status", nil, slug, false); status != "" {
		switch event.Status(status) {
		case event.StatusUpcoming, event.StatusActive, event.StatusEnded:
			e.Status = event.Status(status)
		default:
			badEvent(fmt.Sprintf("status must be one of upcoming, active, ended; got %q", status))
		}
	}

	if tierVal := v.LookupPath(cue.ParsePath("tier")); tierVal.Exists() {
		tier, err := tierVal.Int64()
		if err != nil {
			badEvent(fmt.Sprintf("tier: %v", err))
		} else if tier < 1 || tier > int64(event.DefaultTier) {
			badEvent(fmt.Sprintf("tier must be between 1 and %d; got %d", event.DefaultTier, tier))
		} else {
			e.Tier = int(tier)
		}
	}

	e.ThemeID = stringField(v, "theme", nil, slug, false)

	// Evergreen events compete on launch freshness only, so their date and
	// end window are optional; timed events need the full window.
	e.LaunchDate = timeField(v, "launch", &errs, slug)
	if e.Kind != event.KindEvergreen {
		e.Date = timeField(v, "date", &errs, slug)
		e.EndDate = timeField(v, "end", &errs, slug)
	} else {
		if v.LookupPath(cue.ParsePath("date")).Exists() {
			e.Date = timeField(v, "date", &errs, slug)
		}
		if v.LookupPath(cue.ParsePath("end")).Exists() {
			e.EndDate = timeField(v, "end", &errs, slug)
		}
	}

	// Window ordering only matters once the fields themselves parsed.
	if len(errs) == 0 {
		if e.Kind != event.KindEvergreen {
			if e.Date.Before(e.LaunchDate) || e.EndDate.Before(e.Date) {
				badEvent("dates must satisfy launch <= date <= end")
			}
		} else if !e.Date.IsZero() && e.Date.Before(e.LaunchDate) {
			badEvent("dates must satisfy launch <= date")
		}
	}

	return e, errs
}

func compileAsset(kind store.AssetKind, name string, v cue.Value) (store.Asset, *CompileError) {
	path := fmt.Sprintf("asset.%s.%s", kind, name)
	if !store.ValidAssetKind(kind) {
		return store.Asset{}, &CompileError{Code: ErrCodeBadAsset, Path: path, Message: fmt.Sprintf("unknown asset kind %q", kind), Pos: v.Pos()}
	}

	a := store.Asset{
		ID:   fmt.Sprintf("as-%s-%s", kind, name),
		Kind: kind,
		Name: name,
	}
	if urlVal := v.LookupPath(cue.ParsePath("url")); urlVal.Exists() {
		url, err := urlVal.String()
		if err != nil {
			return store.Asset{}, &CompileError{Code: ErrCodeBadAsset, Path: path, Message: fmt.Sprintf("url: %v", err), Pos: urlVal.Pos()}
		}
		a.URL = url
	}
	if metaVal := v.LookupPath(cue.ParsePath("meta")); metaVal.Exists() {
		meta, err := metaVal.MarshalJSON()
		if err != nil {
			return store.Asset{}, &CompileError{Code: ErrCodeBadAsset, Path: path, Message: fmt.Sprintf("meta: %v", err), Pos: metaVal.Pos()}
		}
		a.Meta = string(meta)
	}
	return a, nil
}

// stringField reads a string field; when required and errs is non-nil, a
// missing field is reported there.
func stringField(v cue.Value, field string, errs *[]error, slug string, required bool) string {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		if required && errs != nil {
			*errs = append(*errs, &CompileError{Code: ErrCodeBadEvent, Path: "event." + slug, Message: field + " is required", Pos: v.Pos()})
		}
		return ""
	}
	s, err := fv.String()
	if err != nil {
		if errs != nil {
			*errs = append(*errs, &CompileError{Code: ErrCodeBadEvent, Path: "event." + slug, Message: fmt.Sprintf("%s: %v", field, err), Pos: fv.Pos()})
		}
		return ""
	}
	return strings.TrimSpace(s)
}

// timeField reads an RFC 3339 timestamp field, reporting missing or
// malformed values.
func timeField(v cue.Value, field string, errs *[]error, slug string) time.Time {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		*errs = append(*errs, &CompileError{Code: ErrCodeBadEvent, Path: "event." + slug, Message: field + " is required", Pos: v.Pos()})
		return time.Time{}
	}
	s, err := fv.String()
	if err != nil {
		*errs = append(*errs, &CompileError{Code: ErrCodeBadEvent, Path: "event." + slug, Message: fmt.Sprintf("%s: %v", field, err), Pos: fv.Pos()})
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		*errs = append(*errs, &CompileError{Code: ErrCodeBadEvent, Path: "event." + slug, Message: fmt.Sprintf("%s: not an RFC 3339 timestamp: %q", field, s), Pos: fv.Pos()})
		return time.Time{}
	}
	return t.UTC()
}
