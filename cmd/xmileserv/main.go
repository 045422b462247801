// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// xmileserv exposes the validation pipeline over HTTP: POST an XMILE
// file to /api/v1/check/ and get back its diagnostics as JSON.
package main

import (
	"encoding/json"
	"flag"
	"html/template"
	"io"
	"net/http"

	"github.com/sdlang/xmile-core/config"
	"github.com/sdlang/xmile-core/internal/xlog"
	"github.com/sdlang/xmile-core/pipeline"
)

const formTmpl = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN"
          "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html>
    <head>
	<meta charset="utf-8"></meta>
        <title>validate an XMILE model</title>
        <meta name="viewport" content="width=device-width, initial-scale=1.0">
    </head>

    <body>
        <p>choose an XMILE file to validate</p>
        <form action="/api/v1/check/" enctype="multipart/form-data" method="post">
            <input type="file" name="data">
            <input type="submit" value="Check">
        </form>
    </body>
</html>
`

// decacheHandler sets headers that prevent intermediate caches from
// serving a stale validation result for what looks like the same URL.
type decacheHandler struct {
	next http.Handler
}

func (h *decacheHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Cache-Control", "no-store")
	h.next.ServeHTTP(rw, r)
}

type rootHandler struct{}

func (*rootHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	form := template.Must(template.New("").Parse(formTmpl))
	if err := form.Execute(rw, nil); err != nil {
		xlog.Logger.WithError(err).Warn("form.Execute")
	}
}

// checkResponse is the JSON shape returned by the /api/v1/check/
// endpoint: one entry per diagnostic, in the same deterministic order
// diag.Collector.Diagnostics() produces.
type checkResponse struct {
	Valid       bool     `json:"valid"`
	Diagnostics []diagJS `json:"diagnostics"`
}

type diagJS struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Path     string `json:"path,omitempty"`
}

type checkHandler struct {
	cfg config.Config
}

func (h *checkHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "POST an XMILE file to this endpoint", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("data")
	var body io.Reader = r.Body
	name := "<upload>"
	if err == nil {
		defer file.Close()
		body = file
		name = header.Filename
	}

	res := pipeline.Run(body, name, h.cfg)

	resp := checkResponse{Valid: !res.HasErrors()}
	for _, d := range res.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, diagJS{
			Kind:     string(d.Kind),
			Severity: d.Severity.String(),
			Message:  d.Message,
			File:     d.Primary.File,
			Path:     d.Primary.Path,
		})
	}

	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(rw).Encode(resp); err != nil {
		xlog.Logger.WithError(err).Warn("json.Encode")
	}
}

func main() {
	addr := flag.String("addr", ":8010", "address to listen on")
	verbose := flag.Bool("verbose", false, "increase logging verbosity")
	flag.Parse()

	xlog.Configure(*verbose, false)

	cfg := config.Default()
	http.Handle("/", &decacheHandler{&rootHandler{}})
	http.Handle("/api/v1/check/", &decacheHandler{&checkHandler{cfg: cfg}})

	xlog.Logger.WithField("addr", *addr).Info("xmileserv listening")
	if err := http.ListenAndServe(*addr, nil); err != nil {
		xlog.Logger.WithError(err).Fatal("ListenAndServe")
	}
}
