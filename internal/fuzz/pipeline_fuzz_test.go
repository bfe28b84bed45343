package fuzztests

import (
	"context"
	"testing"

	"tscan/internal/config"
	"tscan/internal/engine"
	"tscan/internal/lexer"
	"tscan/internal/preproc"
	"tscan/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func FuzzTokenize(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		s, _ := lexer.Tokenize("fuzz.c", "", input)
		if err := testkit.CheckStreamInvariants(s, input); err != nil {
			t.Fatal(err)
		}
	})
}

func FuzzExpandConfigurations(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		var e preproc.Expander
		configs, err := e.Configurations(input)
		if err != nil {
			return
		}
		if len(configs) == 0 || configs[0] != "" {
			t.Fatalf("default configuration must come first, got %q", configs)
		}
		for _, cfg := range configs {
			out, err := e.ExpandConfig(input, cfg)
			if err != nil {
				continue
			}
			s, _ := lexer.Tokenize("fuzz.c", cfg, out)
			if err := testkit.CheckStreamInvariants(s, out); err != nil {
				t.Fatalf("config %q: %v", cfg, err)
			}
		}
	})
}

func FuzzCheckContent(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		settings := config.Default()
		eng, err := engine.New(context.Background(), engine.Options{Settings: &settings})
		if err != nil {
			t.Fatal(err)
		}
		defer eng.Close()

		ctx := context.Background()
		first := eng.CheckContent(ctx, "fuzz.c", string(input))
		diags := eng.Session().Diagnostics()
		want := len(diags)
		if first.Status == engine.StatusHalted {
			// остановленный юнит оставляет ровно одну диагностику и Count 0
			want = 0
			if len(diags) != 1 {
				t.Fatalf("halted unit recorded %d diagnostics", len(diags))
			}
		}
		if first.Count != want {
			t.Fatalf("count %d, %d diagnostics recorded", first.Count, len(diags))
		}
		if err := testkit.CheckDiagnosticInvariants(diags); err != nil {
			t.Fatal(err)
		}
		if again := eng.CheckContent(ctx, "fuzz.c", string(input)); again.Count != 0 {
			t.Fatalf("second check reported %d new diagnostics", again.Count)
		}
	})
}
