// medner-annotate runs the detection pipeline over a file of texts,
// one per line, and emits one JSON result per line
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"

	"medner/internal/platform/config"
	"medner/internal/platform/logger"

	"medner/internal/core/lexicon"
	"medner/internal/core/model"
	"medner/internal/core/normalize"
	"medner/internal/core/patterns"
	"medner/internal/core/pipeline"
)

func main() {
	root := config.New()
	nerCfg := root.Prefix("NER_")
	l := logger.Get()

	var (
		inPath    = flag.String("in", "-", "input file of texts, one per line (- for stdin)")
		outPath   = flag.String("out", "-", "output file for JSON lines (- for stdout)")
		threshold = flag.Float64("threshold", pipeline.DefaultThreshold, "confidence cutoff, clamped into [0,1]")
		modelDir  = flag.String("model-dir", nerCfg.MayString("MODEL_DIR", ""), "directory holding model.onnx, vocab.txt, labels.json (empty disables the model)")
	)
	flag.Parse()

	pp, err := patterns.Load()
	if err != nil {
		l.Fatal().Err(err).Msg("pattern rules failed to load")
	}
	lp, err := lexicon.Load()
	if err != nil {
		l.Fatal().Err(err).Msg("lexicon terms failed to load")
	}

	var port model.Port
	if *modelDir != "" {
		port = model.NewONNX(model.ONNXConfig{
			ModelPath:   *modelDir + "/model.onnx",
			VocabPath:   *modelDir + "/vocab.txt",
			LabelsPath:  *modelDir + "/labels.json",
			LibraryPath: nerCfg.MayString("ONNX_LIB", ""),
			Lowercase:   nerCfg.MayBool("LOWERCASE", true),
			MaxSeqLen:   nerCfg.MayInt("MAX_SEQ_LEN", 512),
		})
	}

	ann := pipeline.New(pipeline.Deps{
		Model:    port,
		Patterns: patterns.New(pp),
		Lexicon:  lexicon.New(lp),
		Log:      l,
	})

	in := os.Stdin
	if *inPath != "-" {
		f, err := os.Open(*inPath)
		if err != nil {
			l.Fatal().Err(err).Msg("open -in failed")
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			l.Fatal().Err(err).Msg("create -out failed")
		}
		defer f.Close()
		out = f
	}

	ctx := context.Background()
	enc := json.NewEncoder(out)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lines, annotated := 0, 0
	for sc.Scan() {
		lines++
		res, err := ann.AnnotateWithThreshold(ctx, normalize.Sanitize(sc.Text()), *threshold)
		if err != nil {
			l.Fatal().Err(err).Int("line", lines).Msg("annotate failed")
		}
		if err := enc.Encode(res); err != nil {
			l.Fatal().Err(err).Msg("encode failed")
		}
		annotated += res.TotalEntities
	}
	if err := sc.Err(); err != nil {
		l.Fatal().Err(err).Msg("read input failed")
	}

	l.Info().Int("texts", lines).Int("entities", annotated).Msg("done")
}
