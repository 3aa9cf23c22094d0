// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"duskc/internal/lspserver"
)

const lsName = "duskls"

var (
	version = "0.0.1"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	h := lspserver.New()

	handler = protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		SetTrace:              h.SetTrace,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidClose:  h.TextDocumentDidClose,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentCompletion: h.TextDocumentCompletion,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting Dusk language server...")

	if err := s.RunStdio(); err != nil {
		log.Println("error starting Dusk language server:", err)
		os.Exit(1)
	}
}
