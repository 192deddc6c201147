package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notegraph/notegraph"
	"github.com/notegraph/notegraph/oto"
	"github.com/notegraph/notegraph/patch"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original patch file is.")
	play := flag.Bool("p", false, "Play the input patches (default behaviour when no other output is defined).")
	rawOut := flag.Bool("r", false, "Output the rendered audio as a .raw file. By default, saves a float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered audio as a .wav file. By default, saves a float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	length := flag.Int("l", 0, "Length to render, in blocks. 0 renders the whole score plus a one second tail.")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				os.Stdout.Write(contents)
				return nil
			}
			dir, name := filepath.Split(filename)
			if *directory != "" {
				dir = *directory
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if dir != "" {
				if err := os.MkdirAll(dir, os.ModePerm); err != nil {
					return fmt.Errorf("could not create output directory %v: %v", dir, err)
				}
			}
			err := os.WriteFile(f, contents, 0644)
			if err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		p, err := patch.Parse(inputBytes)
		if err != nil {
			return fmt.Errorf("could not parse %v: %v", filename, err)
		}
		sampleRate := p.SampleRate
		if sampleRate <= 0 {
			sampleRate = patch.DefaultSampleRate
		}
		built, err := p.Build()
		if err != nil {
			return fmt.Errorf("could not build %v: %v", filename, err)
		}
		blocks := *length
		if blocks <= 0 {
			blocks = built.ScoreBlocks() + sampleRate/notegraph.BlockSize // one second tail for releases to ring out
		}
		buffer := notegraph.Render(built.Graph, blocks)
		if *play {
			if err := playBuffer(buffer, sampleRate); err != nil {
				return fmt.Errorf("could not play %v: %v", filename, err)
			}
		}
		if *rawOut {
			raw, err := notegraph.Raw(buffer, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := notegraph.Wav(buffer, sampleRate, 1, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			files, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func playBuffer(buffer []notegraph.Value, sampleRate int) error {
	context, err := oto.NewContext(sampleRate)
	if err != nil {
		return fmt.Errorf("could not acquire audio context: %v", err)
	}
	defer context.Close()
	sink := context.Output()
	defer sink.Close()
	// write block by block so the device paces us and Close does not cut the
	// tail short
	for len(buffer) > 0 {
		n := notegraph.BlockSize
		if n > len(buffer) {
			n = len(buffer)
		}
		if err := sink.WriteAudio(buffer[:n]); err != nil {
			return err
		}
		buffer = buffer[n:]
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Command line utility for playing .yml patch files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
