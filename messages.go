package main

import "github.com/lithammer/dedent"

var msgUsage = dedent.Dedent(`
	Usage: vehicle-damage-analyzer <image>...

	Each image may be a local file path or an http(s) URL. All images are
	analyzed together as one report.

	Environment variables:
	  GEMINI_API_KEY  Required. Get yours at https://aistudio.google.com/apikey
	  VDA_DB_PATH     Analysis cache database (default: analysis-cache.db)
	  VDA_NO_CACHE    Set to disable the analysis cache
`)

var msgChatIntro = dedent.Dedent(`
	Ask about your report. Type "exit" to quit.
`)
