// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Command wordictctl is a small CLI front-end over pkg/dictionary, used
for creating, inspecting, and bulk-loading dictionary files during
development and debugging.

Note: This is a BETA release. APIs and functionality may rapidly change.

# Usage

Create an empty dictionary:

	wordictctl create -path dict.wdct -locale en_US -format-version 4

Add a word and a bigram, then look them up:

	wordictctl add-word -path dict.wdct -word hello -prob 120
	wordictctl add-word -path dict.wdct -word world -prob 90
	wordictctl add-bigram -path dict.wdct -word0 hello -word1 world -prob 200
	wordictctl query -path dict.wdct -word hello

Run a compacting flush, or migrate to a newer format version:

	wordictctl gc -path dict.wdct
	wordictctl migrate -path dict.wdct -out dict-v5.wdct -format-version 5

Bulk-load a msgpack-encoded []dictionary.DictionaryEntry file:

	wordictctl import -path dict.wdct -file entries.msgpack

# Command Line Flags

Each subcommand accepts its own flag set; run `wordictctl <subcommand>
-h` to see them. Common ones:

	-path string
	    Dictionary file to operate on

Debug logging is enabled by setting the WORDICTCTL_DEBUG environment
variable to any non-empty value.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordict/internal/utils"
	"github.com/bastiangx/wordict/pkg/dictconst"
	"github.com/bastiangx/wordict/pkg/dictionary"
)

const Version = "0.1.0-beta"

func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	sigHandler()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "create":
		cmdCreate(args)
	case "add-word":
		cmdAddWord(args)
	case "add-bigram":
		cmdAddBigram(args)
	case "remove-bigram":
		cmdRemoveBigram(args)
	case "query":
		cmdQuery(args)
	case "predict":
		cmdPredict(args)
	case "suggest":
		cmdSuggest(args)
	case "flush":
		cmdFlush(args)
	case "gc":
		cmdGC(args)
	case "migrate":
		cmdMigrate(args)
	case "dump":
		cmdDump(args)
	case "import":
		cmdImport(args)
	case "version":
		fmt.Printf("wordictctl %s\n", Version)
	default:
		log.Errorf("unknown subcommand: %s", subcommand)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `wordictctl <subcommand> [flags]

subcommands:
  create        create a new, empty dictionary file
  add-word      insert or update a unigram
  add-bigram    insert or update a bigram edge
  remove-bigram remove a bigram edge
  query         look up a word's probability and full record
  predict       bigram-only predictions given a previous word
  suggest       prefix suggestions, optionally bigram-boosted
  flush         persist the live store in place, no compaction
  gc            compact and persist (FlushWithGC)
  migrate       re-insert into a dictionary at a new format version
  dump          list every word in the dictionary
  import        bulk-load msgpack-encoded DictionaryEntry records
  version       print the binary's version`)
}

// openExisting opens path, exiting the process on failure — every
// subcommand but create requires an existing file.
func openExisting(path string, updatable bool) *dictionary.Facade {
	d, err := dictionary.Open(path, updatable)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	if d.IsCorrupted() {
		log.Warnf("%s is corrupted; reads will report NOT_A_PROBABILITY", path)
	}
	return d
}

func cmdCreate(args []string) {
	fs := defaultFlagSet("create")
	path := fs.String("path", "", "dictionary file to create")
	cfg := commonConfigFlag(fs)
	locale := fs.String("locale", "", "locale tag (default from config)")
	formatVersion := fs.Int("format-version", 0, "format version (default from config)")
	fs.Parse(args)

	c := loadConfig(*cfg)
	if *locale == "" {
		*locale = c.Dictionary.DefaultLocale
	}
	if *formatVersion == 0 {
		*formatVersion = c.Dictionary.DefaultFormatVersion
	}
	requirePath(*path)

	d := dictionary.New(uint16(*formatVersion), *locale)
	defer d.Close()
	if !d.Flush(*path) {
		log.Fatalf("failed to write %s", *path)
	}
	log.Infof("created %s (locale=%s, format=%d)", *path, *locale, *formatVersion)
}

func cmdAddWord(args []string) {
	fs := defaultFlagSet("add-word")
	path := fs.String("path", "", "dictionary file")
	word := fs.String("word", "", "word to insert")
	prob := fs.Int("prob", 0, "unigram probability (0-255)")
	notAWord := fs.Bool("not-a-word", false, "mark as not-a-word")
	blacklisted := fs.Bool("blacklisted", false, "mark as blacklisted")
	fs.Parse(args)
	requirePath(*path)
	requireString(*word, "-word")

	d := openExisting(*path, true)
	defer d.Close()
	ok := d.AddUnigramWord([]rune(*word), *prob, dictionary.UnigramFlags{
		IsNotAWord:    *notAWord,
		IsBlacklisted: *blacklisted,
	})
	if !ok {
		log.Fatalf("rejected word %q (empty or over max length?)", *word)
	}
	if !d.Flush(*path) {
		log.Fatalf("failed to persist %s", *path)
	}
	log.Infof("added %q with probability %d", *word, *prob)
}

func cmdAddBigram(args []string) {
	fs := defaultFlagSet("add-bigram")
	path := fs.String("path", "", "dictionary file")
	word0 := fs.String("word0", "", "source word")
	word1 := fs.String("word1", "", "target word")
	prob := fs.Int("prob", 0, "bigram probability (0-255)")
	fs.Parse(args)
	requirePath(*path)
	requireString(*word0, "-word0")
	requireString(*word1, "-word1")

	d := openExisting(*path, true)
	defer d.Close()
	if !d.AddBigramWords([]rune(*word0), []rune(*word1), *prob) {
		log.Fatalf("failed to add bigram %q -> %q (unknown word?)", *word0, *word1)
	}
	if !d.Flush(*path) {
		log.Fatalf("failed to persist %s", *path)
	}
	log.Infof("added bigram %q -> %q with probability %d", *word0, *word1, *prob)
}

func cmdRemoveBigram(args []string) {
	fs := defaultFlagSet("remove-bigram")
	path := fs.String("path", "", "dictionary file")
	word0 := fs.String("word0", "", "source word")
	word1 := fs.String("word1", "", "target word")
	fs.Parse(args)
	requirePath(*path)
	requireString(*word0, "-word0")
	requireString(*word1, "-word1")

	d := openExisting(*path, true)
	defer d.Close()
	d.RemoveBigramWords([]rune(*word0), []rune(*word1))
	if !d.Flush(*path) {
		log.Fatalf("failed to persist %s", *path)
	}
	log.Infof("removed bigram %q -> %q", *word0, *word1)
}

func cmdQuery(args []string) {
	fs := defaultFlagSet("query")
	path := fs.String("path", "", "dictionary file")
	word := fs.String("word", "", "word to look up")
	fs.Parse(args)
	requirePath(*path)
	requireString(*word, "-word")

	d := openExisting(*path, false)
	defer d.Close()

	prob := d.GetProbability([]rune(*word))
	if prob == dictconst.NotAProbability {
		fmt.Printf("%s: not found\n", *word)
		return
	}
	fmt.Printf("%s: probability=%d\n", *word, prob)

	wp, ok := d.GetWordProperty([]rune(*word))
	if !ok {
		return
	}
	fmt.Printf("  notAWord=%v blacklisted=%v count=%d\n",
		wp.Unigram.IsNotAWord, wp.Unigram.IsBlacklisted, wp.Unigram.Count)
	for _, b := range wp.Bigrams {
		fmt.Printf("  -> %s (probability=%d)\n", string(b.TargetWord), b.Bigram.Probability)
	}
}

func cmdPredict(args []string) {
	fs := defaultFlagSet("predict")
	path := fs.String("path", "", "dictionary file")
	prev := fs.String("prev", "", "previous word")
	cfg := commonConfigFlag(fs)
	limit := fs.Int("limit", 0, "max predictions (default from config)")
	fs.Parse(args)
	requirePath(*path)
	requireString(*prev, "-prev")

	c := loadConfig(*cfg)
	if *limit == 0 {
		*limit = c.CLI.DefaultPredictLimit
	}

	d := openExisting(*path, false)
	defer d.Close()
	preds := d.GetPredictions([]rune(*prev), *limit)
	if len(preds) == 0 {
		fmt.Printf("no predictions for %q\n", *prev)
		return
	}
	ranks := utils.CreateRankList(len(preds))
	for i, p := range preds {
		fmt.Printf("%2d. %-20s probability=%d\n", ranks[i], p.Word, p.Probability)
	}
}

func cmdSuggest(args []string) {
	fs := defaultFlagSet("suggest")
	path := fs.String("path", "", "dictionary file")
	prefix := fs.String("prefix", "", "input prefix")
	prev := fs.String("prev", "", "previous word, for bigram boosting")
	cfg := commonConfigFlag(fs)
	limit := fs.Int("limit", 0, "max suggestions (default from config)")
	noFilter := fs.Bool("no-filter", false, "disable input filtering (shows results for numeric/symbol-only prefixes)")
	fs.Parse(args)
	requirePath(*path)

	if !*noFilter && *prefix != "" && !utils.IsValidInput(*prefix) {
		fmt.Printf("rejected prefix %q (numeric, repetitive, or special characters) -- use -no-filter to bypass\n", *prefix)
		return
	}

	c := loadConfig(*cfg)
	if *limit == 0 {
		*limit = c.CLI.DefaultSuggestLimit
	}

	d := openExisting(*path, false)
	defer d.Close()
	suggestions, err := d.GetSuggestions(context.Background(), []rune(*prev), []rune(*prefix), *limit)
	if err != nil {
		log.Fatalf("suggest: %v", err)
	}

	// With no current input but a known previous word, fall back to pure
	// bigram prediction and fold in any overlap, deduplicating against
	// what the prefix engine already returned.
	if *prefix == "" && *prev != "" {
		filter := utils.NewSuggestionFilter("")
		for _, s := range suggestions {
			filter.ShouldInclude(s.Word)
		}
		for _, p := range d.GetPredictions([]rune(*prev), *limit) {
			if filter.ShouldInclude(p.Word) {
				suggestions = append(suggestions, p)
			}
		}
	}

	if len(suggestions) == 0 {
		fmt.Printf("no suggestions for %q\n", *prefix)
		return
	}
	ranks := utils.CreateRankList(len(suggestions))
	for i, s := range suggestions {
		fmt.Printf("%2d. %-20s probability=%d\n", ranks[i], s.Word, s.Probability)
	}
}

func cmdFlush(args []string) {
	fs := defaultFlagSet("flush")
	path := fs.String("path", "", "dictionary file")
	fs.Parse(args)
	requirePath(*path)

	d := openExisting(*path, true)
	defer d.Close()
	if !d.Flush(*path) {
		log.Fatalf("flush failed for %s", *path)
	}
	log.Infof("flushed %s", *path)
}

func cmdGC(args []string) {
	fs := defaultFlagSet("gc")
	path := fs.String("path", "", "dictionary file")
	fs.Parse(args)
	requirePath(*path)

	d := openExisting(*path, true)
	defer d.Close()
	if !d.FlushWithGC(*path) {
		log.Fatalf("flushWithGC failed for %s", *path)
	}
	log.Infof("compacted and flushed %s", *path)
}

func cmdMigrate(args []string) {
	fs := defaultFlagSet("migrate")
	path := fs.String("path", "", "source dictionary file")
	out := fs.String("out", "", "destination dictionary file")
	formatVersion := fs.Int("format-version", 0, "target format version")
	locale := fs.String("locale", "", "locale for the migrated dictionary (default: source's)")
	fs.Parse(args)
	requirePath(*path)
	requireString(*out, "-out")
	if *formatVersion == 0 {
		log.Fatal("-format-version is required")
	}

	d := openExisting(*path, false)
	defer d.Close()

	targetLocale := *locale
	if targetLocale == "" {
		targetLocale = d.GetProperty("LOCALE", 0)
	}

	migrated := d.Migrate(uint16(*formatVersion), targetLocale)
	if migrated == nil {
		log.Fatal("migration failed")
	}
	defer migrated.Close()
	if !migrated.Flush(*out) {
		log.Fatalf("failed to write migrated dictionary to %s", *out)
	}
	log.Infof("migrated %s -> %s (format=%d)", *path, *out, *formatVersion)
}

func cmdDump(args []string) {
	fs := defaultFlagSet("dump")
	path := fs.String("path", "", "dictionary file")
	fs.Parse(args)
	requirePath(*path)

	d := openExisting(*path, false)
	defer d.Close()

	count := 0
	token := dictconst.IterationStartToken
	for {
		word, next := d.GetNextWordAndNextToken(token)
		if word == nil {
			break
		}
		prob := d.GetProbability(word)
		fmt.Printf("%-24s probability=%d\n", string(word), prob)
		count++
		if next == 0 {
			break
		}
		token = next
	}
	log.Infof("%d words", count)
}

func cmdImport(args []string) {
	fs := defaultFlagSet("import")
	path := fs.String("path", "", "dictionary file")
	file := fs.String("file", "", "msgpack-encoded []dictionary.DictionaryEntry")
	fs.Parse(args)
	requirePath(*path)
	requireString(*file, "-file")

	blob, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	var entries []dictionary.DictionaryEntry
	if err := msgpack.Unmarshal(blob, &entries); err != nil {
		log.Fatalf("decode %s: %v", *file, err)
	}

	d := openExisting(*path, true)
	defer d.Close()

	next := 0
	for next < len(entries) {
		processed := d.AddMultipleDictionaryEntries(entries, next)
		if processed == next {
			log.Fatalf("import stalled at entry %d", next)
		}
		if processed < len(entries) {
			log.Debugf("GC pressure at entry %d, compacting before resuming", processed)
			if !d.FlushWithGC(*path) {
				log.Fatalf("flushWithGC failed mid-import at entry %d", processed)
			}
		}
		next = processed
	}
	if !d.Flush(*path) {
		log.Fatalf("failed to persist %s", *path)
	}
	log.Infof("imported %d entries into %s", len(entries), *path)
}
