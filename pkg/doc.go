// Package pkg provides the core libraries for Planboard timeline layouts.
//
// # Overview
//
// Planboard turns a list of dated work items into a Gantt-style layout: it
// resolves a calendar window, keeps the items that touch it, packs them into
// lanes so that no two items in a lane overlap, and projects each onto
// percentage coordinates. The pkg directory is organized as follows:
//
//  1. [timeline] - The layout engine (window, filter, pack, project, density)
//  2. [source] - Item loading from YAML, JSON, CSV files or MongoDB
//  3. [pipeline] - Orchestration (load → layout → render) with caching
//  4. [render] - SVG, PNG, PDF and JSON output plus the overlap graph
//  5. [export] - The serialized layout document
//  6. [server] - The HTTP API
//
// # Architecture
//
//	Item file / MongoDB
//	         ↓
//	    [source] package (decode + normalize items)
//	         ↓
//	    [timeline] package (resolve window, filter, pack, project)
//	         ↓
//	    [render/sink] package (SVG, PNG, PDF, JSON)
//
// # Quick Start
//
//	w, _ := timeline.Resolve(time.Now(), timeline.Quarter)
//	res := timeline.Compute(items, w, timeline.Options{Today: time.Now()})
//	svg := sink.RenderSVG(res)
//
// # Infrastructure
//
// [cache] - Layout and artifact caches: file, in-memory LRU, Redis and a
// no-op cache, all behind one interface.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hooks for layout and render events.
package pkg
