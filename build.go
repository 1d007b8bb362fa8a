//go:build ignore

// build.go - lfscli build helper
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, lfsmirror, transpose, clean, test

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

var (
	rootDir string
	distDir string

	// key = source dir under cmd/, value = output name without extension
	executables = map[string]string{
		"lfsmirror": "lfsmirror",
		"transpose": "transpose",
	}

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); err != nil {
		panic(fmt.Sprintf("go.mod not found in %s; run build.go from the repository root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	switch *target {
	case "all":
		for _, name := range []string{"lfsmirror", "transpose"} {
			buildExecutable(name, *verbose)
		}
		copyConfigFiles(*verbose)
	case "lfsmirror", "transpose":
		buildExecutable(*target, *verbose)
	case "clean":
		clean()
	case "test":
		runTests(*verbose)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Done in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "         lfscli - Build System             " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func buildExecutable(name string, verbose bool) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s...", name))
	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create dist directory: %v", err))
		os.Exit(1)
	}

	outputPath := filepath.Join(distDir, exeName)
	args := []string{"build", "-trimpath", "-ldflags", "-s -w", "-o", outputPath, "./cmd/" + name}
	if verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
	}

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, float64(info.Size())/1024/1024))
	}
}

func copyConfigFiles(verbose bool) {
	src := filepath.Join(rootDir, "configs", "lfscli.yaml")
	data, err := os.ReadFile(src)
	if err != nil {
		printError(fmt.Sprintf("Failed to read %s: %v", src, err))
		return
	}
	dest := filepath.Join(distDir, "lfscli.yaml")
	if err := os.WriteFile(dest, data, 0644); err != nil {
		printError(fmt.Sprintf("Failed to copy config: %v", err))
		return
	}
	if verbose {
		printInfo("Copied " + dest)
	}
}

func clean() {
	printInfo("Cleaning build artifacts...")
	for _, dir := range []string{distDir, filepath.Join(rootDir, "logs")} {
		if err := os.RemoveAll(dir); err != nil {
			printError(fmt.Sprintf("Failed to clean %s: %v", dir, err))
		}
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all         Build both commands and copy the sample config (default)")
	fmt.Println("  lfsmirror   Build the fetch-and-transpose command")
	fmt.Println("  transpose   Build the offline transpose command")
	fmt.Println("  clean       Remove dist/ and logs/")
	fmt.Println("  test        Run all Go tests with the race detector")
}
