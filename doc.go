// Package sharky streams Hamming-distance neighbours of a name through a
// kernel pipe, optionally filtering them against a dictionary.
//
// A Pipeline runs two workers connected by a pipe. The writer enumerates
// every string obtained by substituting up to MaxDistance columns of the
// name with letters a-z, packing the candidates one per line into
// page-sized chunks. On Linux each chunk is handed to the pipe with
// vmsplice(2) page gifting, so generated text is never copied in user
// space. The reader either copies the stream to the output or looks each
// candidate up in a dictionary.Index and emits only the hits.
//
// # Quick Start
//
//	p, err := sharky.New(sharky.Config{
//	    MaxDistance:    2,
//	    Name:           "sharky",
//	    DictionaryPath: "/usr/share/dict/words",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Run(ctx); err != nil {
//	    os.Exit(sharky.ExitCode(err))
//	}
//
// # Wire Format
//
// Candidates are newline-terminated. A chunk that cannot hold the next
// record is zero-padded to the page boundary and sent; records never span
// chunks. Readers strip the padding.
//
// # Duplicates
//
// Replacement letters are not required to differ from the original, so the
// input name itself appears once per column at distance 1 and candidates
// repeat across column selections. The stream is intentionally not
// deduplicated.
//
// # Dictionary Sources
//
// DictionaryPath accepts local files, compressed files (.zst, .gz, .lz4),
// s3://bucket/key and minio://endpoint/bucket/key URLs. See package
// dictionary.
package sharky
