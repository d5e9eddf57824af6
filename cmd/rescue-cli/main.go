// Package main provides the rescue-cli command line interface for Rescue-CTR operations.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/ballot"
	"github.com/quiknode-labs/arcium-election/cipher"
	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/rescue"
	"github.com/quiknode-labs/arcium-election/rescueprime"
	"github.com/quiknode-labs/arcium-election/utils"
)

const (
	version = "0.3.0"
	appName = "rescue-cli"

	// envSharedSecret is consulted when --shared-secret is not given.
	envSharedSecret = "RESCUE_SHARED_SECRET"
)

// OutputFormat represents the encoding of ciphertext blocks and nonces
type OutputFormat string

const (
	FormatHex    OutputFormat = "hex"
	FormatBase64 OutputFormat = "base64"
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	OutputFormat OutputFormat
	OutputFile   string
	InputFile    string
	SharedSecret string
	Verbose      bool
	Timing       bool
}

// EncryptedExport represents an encrypted vector
type EncryptedExport struct {
	Nonce      string   `json:"nonce"`
	Ciphertext []string `json:"ciphertext"`
}

// VoteExport represents an encrypted vote as submitted to a poll
type VoteExport struct {
	Nonce      string `json:"nonce"`
	NonceU128  string `json:"nonce_u128"`
	Choice     string `json:"choice"`
	OptionName string `json:"option,omitempty"`
}

// TallyExport represents decrypted poll counters
type TallyExport struct {
	Counts [ballot.NumOptions]uint64 `json:"counts"`
	Winner uint8                     `json:"winner"`
	Name   string                    `json:"winner_name"`
}

// ParamsExport describes a Rescue instance
type ParamsExport struct {
	Mode         string `json:"mode"`
	Field        string `json:"field"`
	BinSize      uint   `json:"bin_size"`
	M            int    `json:"m"`
	Capacity     int    `json:"capacity,omitempty"`
	Alpha        string `json:"alpha"`
	AlphaInverse string `json:"alpha_inverse"`
	NRounds      int    `json:"n_rounds"`
	RoundKeys    int    `json:"round_keys"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("arcium-election library version %s\n", arcium.Version)
	case "encrypt", "enc":
		handleEncrypt(os.Args[2:])
	case "decrypt", "dec":
		handleDecrypt(os.Args[2:])
	case "hash":
		handleHash(os.Args[2:])
	case "params":
		handleParams(os.Args[2:])
	case "vote":
		handleVote(os.Args[2:])
	case "tally":
		handleTally(os.Args[2:])
	case "benchmark":
		handleBenchmark(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - Rescue-CTR over GF(2^255-19)

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    encrypt     Encrypt a vector of field elements
    decrypt     Decrypt ciphertext blocks
    hash        Rescue-Prime digest of a vector of field elements
    params      Show derived permutation parameters
    vote        Encrypt a poll vote (0 = Neo robot, 1 = Humane AI PIN, 2 = friend.com)
    tally       Decrypt encrypted poll counters and report the winner
    benchmark   Run performance benchmarks
    version     Show version information
    help        Show this help message

OPTIONS:
    --shared-secret, -s <hex>   32-byte shared secret (default: $%s)
    --env-file, -e <path>       Load environment variables from a dotenv file
    --nonce, -n <hex>           16-byte nonce (random when encrypting without one)
    --values <a,b,...>          Comma-separated integers in [0, p)
    --ciphertext, -c <b1,b2>    Comma-separated 32-byte blocks (hex or base64)
    --input, -i <file>          Read encrypted JSON from a file
    --output, -o <file>         Write output to a file (mode 0600)
    --format, -f <hex|base64>   Encoding for nonces and blocks (default: hex)
    --verbose                   Print details to stderr
    --timing, -t                Print timings to stderr

EXAMPLES:
    # Encrypt three values with a random nonce
    %s encrypt --shared-secret $SECRET --values 1,2,3 --output enc.json

    # Decrypt them again
    %s decrypt --shared-secret $SECRET --input enc.json

    # Encrypt a vote
    %s vote --shared-secret $SECRET --choice 2

    # Show hash-mode parameters
    %s params --mode hash

    # Run benchmarks
    %s benchmark --iterations 10
`, appName, appName, envSharedSecret, appName, appName, appName, appName, appName)
}

// ============================================================================
// Cipher Commands
// ============================================================================

func handleEncrypt(args []string) {
	config := parseConfig(args)
	c := mustCipher(config)

	values, err := parseValues(getArg(args, "--values", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing values: %v\n", err)
		os.Exit(1)
	}
	nonce := mustNonce(getArg(args, "--nonce", "-n"), true)

	start := time.Now()
	ct, err := c.Encrypt(values, nonce)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encrypting: %v\n", err)
		os.Exit(1)
	}
	if config.Timing {
		fmt.Fprintf(os.Stderr, "Encryption took: %v\n", elapsed)
	}

	export := EncryptedExport{
		Nonce:      encodeBytes(nonce, config.OutputFormat),
		Ciphertext: make([]string, len(ct)),
	}
	for i := range ct {
		export.Ciphertext[i] = encodeBytes(ct[i][:], config.OutputFormat)
	}

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Encrypted %d element(s) into %d block(s)\n", len(values), len(ct))
	}
}

func handleDecrypt(args []string) {
	config := parseConfig(args)
	c := mustCipher(config)

	var nonceStr string
	var blockStrs []string
	if config.InputFile != "" {
		export, err := loadEncryptedFromFile(config.InputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
		nonceStr, blockStrs = export.Nonce, export.Ciphertext
	} else {
		nonceStr = getArg(args, "--nonce", "-n")
		blockStrs = splitList(getArg(args, "--ciphertext", "-c"))
	}
	if nonceStr == "" {
		fmt.Fprintf(os.Stderr, "Error: --nonce is required\n")
		os.Exit(1)
	}
	nonce := mustNonce(nonceStr, false)

	blocks := make([][]byte, len(blockStrs))
	for i, s := range blockStrs {
		b, err := decodeString(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding block %d: %v\n", i, err)
			os.Exit(1)
		}
		blocks[i] = b
	}

	start := time.Now()
	pt, err := c.Decrypt(blocks, nonce)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decrypting: %v\n", err)
		os.Exit(1)
	}
	if config.Timing {
		fmt.Fprintf(os.Stderr, "Decryption took: %v\n", elapsed)
	}

	writeOutput([]byte(joinBigs(pt)), config.OutputFile)
}

func handleHash(args []string) {
	config := parseConfig(args)
	values, err := parseValues(getArg(args, "--values", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing values: %v\n", err)
		os.Exit(1)
	}

	h, err := rescueprime.NewHash()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building hash: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	digest, err := h.Digest(field.Elements(values...))
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing: %v\n", err)
		os.Exit(1)
	}
	if config.Timing {
		fmt.Fprintf(os.Stderr, "Hashing took: %v\n", elapsed)
	}

	out := make([]*big.Int, len(digest))
	for i, e := range digest {
		out[i] = e.Big()
	}
	writeOutput([]byte(joinBigs(out)), config.OutputFile)
}

func handleParams(args []string) {
	config := parseConfig(args)

	var mode arcium.Mode
	export := ParamsExport{Field: field.Order.String(), BinSize: field.BinSize}
	switch m := getArg(args, "--mode", "-m"); m {
	case "", "cipher":
		// Parameters do not depend on the key.
		mode = arcium.CipherMode{Key: field.Zeros(arcium.CipherBlockSize)}
		export.Mode = "cipher"
	case "hash":
		mode = arcium.HashMode{M: rescueprime.StateSize, Capacity: rescueprime.Capacity}
		export.Mode = "hash"
		export.Capacity = rescueprime.Capacity
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid mode '%s'. Must be one of: cipher, hash\n", m)
		os.Exit(1)
	}

	desc, err := rescue.NewDesc(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deriving parameters: %v\n", err)
		os.Exit(1)
	}
	export.M = desc.M()
	export.Alpha = desc.Alpha().String()
	export.AlphaInverse = desc.AlphaInverse().String()
	export.NRounds = desc.NRounds()
	export.RoundKeys = len(desc.RoundKeys())

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, config.OutputFile)
}

// ============================================================================
// Poll Commands
// ============================================================================

func handleVote(args []string) {
	config := parseConfig(args)
	c := mustCipher(config)

	choiceStr := getArg(args, "--choice", "")
	if choiceStr == "" {
		fmt.Fprintf(os.Stderr, "Error: --choice is required\n")
		os.Exit(1)
	}
	var choice uint8
	if _, err := fmt.Sscanf(choiceStr, "%d", &choice); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid choice '%s'\n", choiceStr)
		os.Exit(1)
	}

	var nonce [arcium.NonceSize]byte
	copy(nonce[:], mustNonce(getArg(args, "--nonce", "-n"), true))

	ct, err := ballot.EncryptVote(c, choice, nonce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encrypting vote: %v\n", err)
		os.Exit(1)
	}

	export := VoteExport{
		Nonce:     encodeBytes(nonce[:], config.OutputFormat),
		NonceU128: ballot.NonceBig(nonce).String(),
		Choice:    encodeBytes(ct[:], config.OutputFormat),
	}
	if config.Verbose {
		export.OptionName = ballot.OptionName(choice)
	}

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, config.OutputFile)
}

func handleTally(args []string) {
	config := parseConfig(args)
	c := mustCipher(config)

	var nonceStr string
	var blockStrs []string
	if config.InputFile != "" {
		export, err := loadEncryptedFromFile(config.InputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
		nonceStr, blockStrs = export.Nonce, export.Ciphertext
	} else {
		nonceStr = getArg(args, "--nonce", "-n")
		blockStrs = splitList(getArg(args, "--ciphertext", "-c"))
	}
	if len(blockStrs) != ballot.NumOptions {
		fmt.Fprintf(os.Stderr, "Error: expected %d counter blocks, got %d\n", ballot.NumOptions, len(blockStrs))
		os.Exit(1)
	}

	var nonce [arcium.NonceSize]byte
	copy(nonce[:], mustNonce(nonceStr, false))

	var state [ballot.NumOptions][arcium.BlockSize]byte
	for i, s := range blockStrs {
		b, err := decodeString(s)
		if err != nil || len(b) != arcium.BlockSize {
			fmt.Fprintf(os.Stderr, "Error: counter block %d is not %d bytes\n", i, arcium.BlockSize)
			os.Exit(1)
		}
		copy(state[i][:], b)
	}

	counts, err := ballot.DecryptTally(c, state, nonce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decrypting tally: %v\n", err)
		os.Exit(1)
	}
	winner := ballot.Winner(counts)

	output, err := json.MarshalIndent(TallyExport{Counts: counts, Winner: winner, Name: ballot.OptionName(winner)}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, config.OutputFile)
}

// ============================================================================
// Benchmark
// ============================================================================

func handleBenchmark(args []string) {
	iterationsStr := getArg(args, "--iterations", "")

	iterations := 10
	if iterationsStr != "" {
		_, _ = fmt.Sscanf(iterationsStr, "%d", &iterations)
	}

	if iterations < 1 {
		iterations = 1
	}

	fmt.Printf("Rescue-CTR Benchmark Results\n")
	fmt.Printf("============================\n")
	fmt.Printf("Iterations: %d\n\n", iterations)

	secret, err := utils.SecureRandomBytes(arcium.SharedSecretSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Random error: %v\n", err)
		os.Exit(1)
	}
	defer utils.Zeroize(secret)
	nonce := make([]byte, arcium.NonceSize)

	// Parameter derivation is cached after the first instance, so the first
	// construction is reported separately.
	start := time.Now()
	c, err := cipher.New(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cipher error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  First New:   %v\n", time.Since(start))

	var newTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		_, err := cipher.New(secret)
		newTotal += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cipher error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  New:         %v (avg)\n", newTotal/time.Duration(iterations))

	pt := make([]*big.Int, arcium.CipherBlockSize)
	for i := range pt {
		pt[i] = big.NewInt(int64(i))
	}

	var encryptTotal time.Duration
	var ct [][arcium.BlockSize]byte
	for i := 0; i < iterations; i++ {
		start := time.Now()
		ct, err = c.Encrypt(pt, nonce)
		encryptTotal += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encrypt error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  Encrypt:     %v (avg, %d elements)\n", encryptTotal/time.Duration(iterations), len(pt))

	blocks := make([][]byte, len(ct))
	for i := range ct {
		blocks[i] = ct[i][:]
	}
	var decryptTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		_, err := c.Decrypt(blocks, nonce)
		decryptTotal += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Decrypt error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  Decrypt:     %v (avg, %d elements)\n", decryptTotal/time.Duration(iterations), len(pt))

	h, err := rescueprime.NewHash()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hash error: %v\n", err)
		os.Exit(1)
	}
	msg := field.Elements(pt...)
	var hashTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		_, err := h.Digest(msg)
		hashTotal += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Hash error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  Hash:        %v (avg, %d elements)\n", hashTotal/time.Duration(iterations), len(msg))

	fmt.Println()
	fmt.Println("Benchmark complete!")
}

// ============================================================================
// Utility Functions
// ============================================================================

func parseConfig(args []string) CLIConfig {
	config := CLIConfig{
		OutputFormat: FormatHex,
	}

	if envFile := getArg(args, "--env-file", "-e"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading env file: %v\n", err)
			os.Exit(1)
		}
	}

	format := getArg(args, "--format", "-f")
	switch format {
	case "hex":
		config.OutputFormat = FormatHex
	case "base64":
		config.OutputFormat = FormatBase64
	case "":
		// No format specified, use default
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format '%s'. Must be one of: hex, base64\n", format)
		os.Exit(1)
	}

	config.SharedSecret = getArg(args, "--shared-secret", "-s")
	if config.SharedSecret == "" {
		config.SharedSecret = os.Getenv(envSharedSecret)
	}
	config.OutputFile = getArg(args, "--output", "-o")
	config.InputFile = getArg(args, "--input", "-i")
	config.Verbose = hasFlag(args, "--verbose", "")
	config.Timing = hasFlag(args, "--timing", "-t")

	return config
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || (short != "" && arg == short) {
			return true
		}
	}
	return false
}

func mustCipher(config CLIConfig) *cipher.RescueCipher {
	if config.SharedSecret == "" {
		fmt.Fprintf(os.Stderr, "Error: --shared-secret or %s is required\n", envSharedSecret)
		os.Exit(1)
	}
	secret, err := decodeString(config.SharedSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding shared secret: %v\n", err)
		os.Exit(1)
	}
	defer utils.Zeroize(secret)

	start := time.Now()
	c, err := cipher.New(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating cipher: %v\n", err)
		os.Exit(1)
	}
	if config.Timing {
		fmt.Fprintf(os.Stderr, "Key derivation took: %v\n", time.Since(start))
	}
	return c
}

// mustNonce decodes s, or draws a random nonce when s is empty and random is set.
func mustNonce(s string, random bool) []byte {
	if s == "" && random {
		nonce, err := utils.SecureRandomBytes(arcium.NonceSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating nonce: %v\n", err)
			os.Exit(1)
		}
		return nonce
	}
	nonce, err := decodeString(s)
	if err != nil || len(nonce) != arcium.NonceSize {
		fmt.Fprintf(os.Stderr, "Error: nonce must encode %d bytes\n", arcium.NonceSize)
		os.Exit(1)
	}
	return nonce
}

func parseValues(s string) ([]*big.Int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("--values is required")
	}
	if err := utils.CheckLength(len(parts), utils.MaxVectorLength); err != nil {
		return nil, err
	}
	values := make([]*big.Int, len(parts))
	for i, p := range parts {
		v, ok := new(big.Int).SetString(p, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		values[i] = v
	}
	return values, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinBigs(xs []*big.Int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, ",")
}

func encodeBytes(data []byte, format OutputFormat) string {
	switch format {
	case FormatBase64:
		return base64.StdEncoding.EncodeToString(data)
	default:
		return hex.EncodeToString(data)
	}
}

// decodeString accepts hex or base64. Hex is tried first because every hex string of
// a multiple of four characters is also valid base64.
func decodeString(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if data, err := hex.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("unable to decode string")
}

// loadEncryptedFromFile reads an EncryptedExport written by the encrypt command.
func loadEncryptedFromFile(filename string) (*EncryptedExport, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > utils.MaxInputFileSize {
		return nil, fmt.Errorf("input file too large: %d > %d bytes", info.Size(), utils.MaxInputFileSize)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var export EncryptedExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("unable to parse file: %w", err)
	}
	return &export, nil
}

func writeOutput(data []byte, filename string) {
	if filename != "" {
		// Create file with restrictive permissions (0600 read-write for owner only).
		f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		if _, err := f.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}

		// Ensure permissions are enforced even if umask is permissive
		if err := os.Chmod(filename, 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting file permissions: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(string(data))
	}
}
