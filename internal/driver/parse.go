package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"hydrodeck/internal/diag"
	"hydrodeck/internal/observ"
	"hydrodeck/internal/registry"
	"hydrodeck/internal/source"
	"hydrodeck/internal/store"
	"hydrodeck/internal/trace"
	"hydrodeck/internal/xref"
)

// ParseDir parses every file of dir in parallel and validates the result.
// Per-file failures are recorded in the result; the returned error is only
// set when dir cannot be listed or ctx is cancelled.
func ParseDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	timer := observ.NewTimer()
	idx := timer.Begin("discover")
	files, err := Discover(dir)
	timer.End(idx, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}
	return run(ctx, dir, files, opts, timer)
}

// ParseFile parses a single file; validation covers that file only.
func ParseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	return run(ctx, filepath.Dir(path), []string{path}, opts, observ.NewTimer())
}

func run(ctx context.Context, dir string, files []string, opts Options, timer *observ.Timer) (*Result, error) {
	if opts.Registry == nil {
		return nil, errors.New("driver: no format registry")
	}
	opts.Registry.Freeze()

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "run", trace.ParentSpan(ctx)).WithExtra("dir", dir)
	defer span.End("")

	// Файлы загружаются последовательно до запуска задач: FileSet не потокобезопасен на запись.
	idx := timer.Begin("load")
	fileSet := source.NewFileSetWithBase(dir)
	ids := make([]source.FileID, len(files))
	loadErrs := make([]error, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			id = fileSet.Add(path, nil, source.FileVirtual)
			loadErrs[i] = err
		}
		ids[i] = id
	}
	timer.End(idx, "")

	for _, path := range files {
		emit(ctx, opts.Progress, Event{Path: path, Stage: StageQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индекс уникален для каждой задачи, мьютекс не нужен
	results := make([]FileResult, len(files))
	idx = timer.Begin("parse")
	parseSpan := trace.Begin(tr, trace.ScopeDriver, "parse", span.ID())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := worker{opts: opts, tracer: tr, parent: parseSpan.ID()}
			results[i] = w.parse(gctx, path, fileSet.Get(ids[i]), loadErrs[i])
			return nil
		})
	}
	err := g.Wait()
	parseSpan.End(strconv.Itoa(len(files)) + " files")
	timer.End(idx, fmt.Sprintf("%d files, %d jobs", len(files), jobs))

	res := &Result{Dir: dir, FileSet: fileSet, Files: results, Bag: diag.NewBag(), Timer: timer}
	if err != nil {
		return res, err
	}
	for i := range results {
		r := &results[i]
		timer.Record("file:"+filepath.Base(r.Path), r.Dur, r.Status().String())
		res.Bag.Merge(r.Bag)
	}

	if !opts.NoValidate {
		emit(ctx, opts.Progress, Event{Stage: StageValidate})
		idx = timer.Begin("validate")
		vs := trace.Begin(tr, trace.ScopeDriver, "validate", span.ID())
		before := res.Bag.Len()
		xref.Validate(res.Collections(), diag.BagReporter{Bag: res.Bag})
		vs.End(strconv.Itoa(res.Bag.Len()-before) + " findings")
		timer.End(idx, "")
	}
	res.Bag.Sort()
	return res, nil
}

type worker struct {
	opts   Options
	tracer trace.Tracer
	parent uint64
}

func (w worker) parse(ctx context.Context, path string, file *source.File, loadErr error) (res FileResult) {
	start := time.Now()
	res = FileResult{Path: path, FileID: file.ID, Bag: diag.NewBag()}
	rep := diag.BagReporter{Bag: res.Bag}
	sp := trace.Begin(w.tracer, trace.ScopeFile, "file:"+filepath.Base(path), w.parent)
	emit(ctx, w.opts.Progress, Event{Path: path, Stage: StageParse})

	defer func() {
		res.Dur = time.Since(start)
		n := 0
		if res.Collection != nil {
			n = res.Collection.Len()
		}
		for _, d := range res.Bag.Items() {
			trace.Point(w.tracer, trace.ScopeRecord, d.Code.ID(), d.Message, sp.ID())
		}
		sp.WithExtra("entities", strconv.Itoa(n)).WithExtra("format", res.Format).End(res.Status().String())
		emit(ctx, w.opts.Progress, Event{Path: path, Stage: StageDone, Status: res.Status(), Entities: n})
	}()

	if loadErr != nil {
		diag.ReportError(rep, diag.IOLoadFileError, source.Span{File: file.ID}, "failed to load file: "+loadErr.Error()).Emit()
		res.Err = loadErr
		return res
	}

	entry, err := w.opts.Registry.Select(file)
	if errors.Is(err, registry.ErrNoParser) {
		res.Skipped = !w.opts.Strict
		msg := fmt.Sprintf("no parser registered for %s", filepath.Base(path))
		if w.opts.Strict {
			diag.ReportError(rep, diag.RegNoParser, source.Span{File: file.ID}, msg).Emit()
			res.Err = err
		} else {
			diag.ReportInfo(rep, diag.RegNoParser, source.Span{File: file.ID}, msg+"; skipped").Emit()
		}
		return res
	}
	res.Format = entry.Name

	var key store.Digest
	if w.opts.Cache != nil {
		key = store.Key(entry.Name, file.Hash, w.opts.CacheSalt)
		col, diags, hit, err := w.opts.Cache.Get(key, file)
		if err != nil {
			diag.ReportWarning(rep, diag.IOCacheError, source.Span{File: file.ID}, "cache read failed: "+err.Error()).Emit()
		}
		if hit {
			for _, d := range diags {
				res.Bag.Add(d)
			}
			res.Collection = col
			res.Cached = true
			return res
		}
	}

	col, err := registry.Run(entry, file, rep)
	if err != nil {
		res.Err = err
		return res
	}
	res.Collection = col

	if w.opts.Cache != nil {
		if err := w.opts.Cache.Put(key, col, file.Flags, res.Bag.Items()); err != nil {
			diag.ReportWarning(rep, diag.IOCacheError, source.Span{File: file.ID}, "cache write failed: "+err.Error()).Emit()
		}
	}
	return res
}
