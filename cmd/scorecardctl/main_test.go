package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/scorecard-dashboard/internal/app"
	"github.com/yungbote/scorecard-dashboard/internal/modules/policy"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

const cliCatalogueCSV = "policy_options,flag,very-low,low,medium,high,lens_1,lens_2,default\n" +
	"Space Safety,scalable,1,2,3,4,Space Safety,Space Domain Awareness,True\n" +
	"Galileo Nav,not scalable,,,5,,NAV,Space Transportation,False\n"

func setupCLI(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, policy.DefaultCatalogueKey), []byte(cliCatalogueCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	prev := openCore
	openCore = func(bool) (*app.Core, error) {
		return app.NewCore(logger.NewNop(), app.Config{Environment: "local", AppName: "scorecardctl", DataBucket: root}, nil)
	}
	t.Cleanup(func() {
		openCore = prev
		core = nil
	})
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	saveName, saveDescription, recordsPath, pngPath = "", "", "", ""
	lensName = "domain"
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	core = nil
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestScorecardLifecycle(t *testing.T) {
	setupCLI(t)
	in := t.TempDir()
	selected := writeFile(t, in, "selected.csv", "id,on_off,option\nspace-safety,True,high\ngalileo-nav,True,\n")
	empty := writeFile(t, in, "empty.csv", "id,on_off,option\n")

	out, err := execute(t, "save", "--name", "Plan A", "--description", "baseline plan", "--records", selected, "--user", "ops")
	if err != nil {
		t.Fatalf("save: %v (%s)", err, out)
	}
	filename := strings.TrimSpace(out)
	if !strings.HasPrefix(filename, "plana_") {
		t.Fatalf("save: unexpected filename %q", filename)
	}

	out, err = execute(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, filename) || !strings.Contains(out, "ops") {
		t.Fatalf("list: want %q by ops in output, got=%q", filename, out)
	}

	out, err = execute(t, "price", filename)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	var pr struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &pr); err != nil {
		t.Fatalf("price output: %v (%s)", err, out)
	}
	if pr.Total != 9 {
		t.Fatalf("price total: want=9 got=%v", pr.Total)
	}

	out, err = execute(t, "overwrite", filename, "--records", empty)
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if !strings.Contains(out, "archived") {
		t.Fatalf("overwrite with no records should archive, got=%q", out)
	}

	out, err = execute(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, filename) {
		t.Fatalf("archived scorecard still listed: %q", out)
	}

	if _, err := execute(t, "show", filename); err == nil {
		t.Fatalf("show: expected error for archived scorecard")
	}
}

func TestCompareWritesTreemap(t *testing.T) {
	setupCLI(t)
	in := t.TempDir()
	a := writeFile(t, in, "a.csv", "id,on_off,option\nspace-safety,True,low\n")

	out, err := execute(t, "save", "--name", "Alpha", "--description", "alpha plan", "--records", a)
	if err != nil {
		t.Fatalf("save: %v (%s)", err, out)
	}
	filename := strings.TrimSpace(out)

	png := filepath.Join(in, "cmp.png")
	out, err = execute(t, "compare", filename, "--group-by", "package", "--png", png)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	var cmp struct {
		Total    float64 `json:"total"`
		Packages []struct {
			Label string `json:"label"`
		} `json:"packages"`
	}
	if err := json.Unmarshal([]byte(out), &cmp); err != nil {
		t.Fatalf("compare output: %v (%s)", err, out)
	}
	if cmp.Total != 2 || len(cmp.Packages) != 1 || cmp.Packages[0].Label != "Alpha (€2.0mn)" {
		t.Fatalf("compare: got=%+v", cmp)
	}
	if info, err := os.Stat(png); err != nil || info.Size() == 0 {
		t.Fatalf("treemap png not written: %v", err)
	}
}

func TestCatalogueRoundTrip(t *testing.T) {
	root := setupCLI(t)
	out := filepath.Join(t.TempDir(), "catalogue.yaml")

	if msg, err := execute(t, "catalogue", "export", out); err != nil {
		t.Fatalf("export: %v (%s)", err, msg)
	}
	if err := os.Remove(filepath.Join(root, policy.DefaultCatalogueKey)); err != nil {
		t.Fatal(err)
	}
	msg, err := execute(t, "catalogue", "import", out)
	if err != nil {
		t.Fatalf("import: %v (%s)", err, msg)
	}
	if !strings.Contains(msg, "2 policies") {
		t.Fatalf("import: got=%q", msg)
	}
	if _, err := os.Stat(filepath.Join(root, policy.DefaultCatalogueKey)); err != nil {
		t.Fatalf("catalogue not rewritten: %v", err)
	}
}

func TestPriceRejectsPackageLens(t *testing.T) {
	setupCLI(t)
	_, err := execute(t, "price", "whatever_2024-01-01T00-00-00", "--lens", "package")
	if err == nil || !strings.Contains(err.Error(), "invalid --lens") {
		t.Fatalf("expected invalid lens error, got=%v", err)
	}
}

func TestSaveRequiresDescription(t *testing.T) {
	setupCLI(t)
	a := writeFile(t, t.TempDir(), "a.csv", "id,on_off,option\nspace-safety,True,low\n")

	out, err := execute(t, "save", "--name", "Alpha", "--records", a)
	if err == nil {
		t.Fatalf("save: expected validation error, got output %q", out)
	}
	if !strings.Contains(err.Error(), "description") {
		t.Fatalf("save: want error naming description, got=%v", err)
	}
}
