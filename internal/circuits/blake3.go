package circuits

import "github.com/consensys/gnark/frontend"

// blake3 implements enough of BLAKE3 (single chunk, unkeyed) inside an R1CS
// circuit to reproduce internal/hashing.H for every call this circuit makes.
// Every hash in the withdrawal circuit concatenates a handful of 32-byte
// hash-typed fields and 8-byte little-endian integers totalling well under
// 1024 bytes, so the multi-chunk tree-hashing mode of BLAKE3 (parent nodes,
// chunk counters beyond zero) is never needed — every call compresses one
// chunk of at most a few 64-byte blocks, the last carrying CHUNK_END|ROOT.
// Grounded on the reference algorithm (`blake3_compress`/`blake3_hash` in
// BLAKE3's public specification), the same function
// original_source/packages/zk-guest-sp1/guest/src/main.rs calls natively as
// `hash_blake3` inside its zkVM guest.

var blake3IV = [8]frontend.Variable{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

var blake3MsgPermutation = [16]int{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}

const (
	blake3FlagChunkStart = 1
	blake3FlagChunkEnd   = 2
	blake3FlagRoot       = 8
)

// rotr32 rotates the low 32 bits of x right by n bits.
func rotr32(api frontend.API, x frontend.Variable, n uint) frontend.Variable {
	bits := api.ToBinary(x, 32)
	rotated := make([]frontend.Variable, 32)
	for i := 0; i < 32; i++ {
		rotated[i] = bits[(uint(i)+n)%32]
	}
	return api.FromBinary(rotated...)
}

// xor32 xors the low 32 bits of a and b.
func xor32(api frontend.API, a, b frontend.Variable) frontend.Variable {
	ab := api.ToBinary(a, 32)
	bb := api.ToBinary(b, 32)
	out := make([]frontend.Variable, 32)
	for i := range out {
		out[i] = api.Xor(ab[i], bb[i])
	}
	return api.FromBinary(out...)
}

// add32 sums vars mod 2^32. Used with at most three operands in this
// circuit's G function, so 40 bits is ample headroom for the pre-reduction
// sum before truncating to the low 32 bits.
func add32(api frontend.API, vars ...frontend.Variable) frontend.Variable {
	sum := frontend.Variable(0)
	for _, v := range vars {
		sum = api.Add(sum, v)
	}
	bits := api.ToBinary(sum, 40)
	return api.FromBinary(bits[:32]...)
}

// blake3G is BLAKE3's quarter-round mixing function over state indices
// a,b,c,d with message words mx, my.
func blake3G(api frontend.API, state *[16]frontend.Variable, a, b, c, d int, mx, my frontend.Variable) {
	state[a] = add32(api, state[a], state[b], mx)
	state[d] = rotr32(api, xor32(api, state[d], state[a]), 16)
	state[c] = add32(api, state[c], state[d])
	state[b] = rotr32(api, xor32(api, state[b], state[c]), 12)
	state[a] = add32(api, state[a], state[b], my)
	state[d] = rotr32(api, xor32(api, state[d], state[a]), 8)
	state[c] = add32(api, state[c], state[d])
	state[b] = rotr32(api, xor32(api, state[b], state[c]), 7)
}

func blake3Round(api frontend.API, state *[16]frontend.Variable, msg [16]frontend.Variable) {
	blake3G(api, state, 0, 4, 8, 12, msg[0], msg[1])
	blake3G(api, state, 1, 5, 9, 13, msg[2], msg[3])
	blake3G(api, state, 2, 6, 10, 14, msg[4], msg[5])
	blake3G(api, state, 3, 7, 11, 15, msg[6], msg[7])
	blake3G(api, state, 0, 5, 10, 15, msg[8], msg[9])
	blake3G(api, state, 1, 6, 11, 12, msg[10], msg[11])
	blake3G(api, state, 2, 7, 8, 13, msg[12], msg[13])
	blake3G(api, state, 3, 4, 9, 14, msg[14], msg[15])
}

func blake3Permute(msg [16]frontend.Variable) [16]frontend.Variable {
	var out [16]frontend.Variable
	for i, src := range blake3MsgPermutation {
		out[i] = msg[src]
	}
	return out
}

// blake3Compress runs the 7-round compression function over a 16-word block
// with chaining value cv, returning the new chaining value (the first 8
// feed-forward words — the only ones this single-chunk circuit ever needs).
// counter is always zero (chunk index 0: every call in this circuit hashes
// well under one 1024-byte chunk), blockLen and flags are Go constants known
// at circuit-definition time since every H() call's argument shape is fixed.
func blake3Compress(api frontend.API, cv [8]frontend.Variable, block [16]frontend.Variable, blockLen int, flags int) [8]frontend.Variable {
	state := [16]frontend.Variable{
		cv[0], cv[1], cv[2], cv[3], cv[4], cv[5], cv[6], cv[7],
		blake3IV[0], blake3IV[1], blake3IV[2], blake3IV[3],
		frontend.Variable(0), frontend.Variable(0),
		frontend.Variable(blockLen), frontend.Variable(flags),
	}

	msg := block
	for round := 0; round < 7; round++ {
		blake3Round(api, &state, msg)
		if round < 6 {
			msg = blake3Permute(msg)
		}
	}

	var out [8]frontend.Variable
	for i := 0; i < 8; i++ {
		out[i] = xor32(api, state[i], state[i+8])
	}
	return out
}

// blake3CompressChunk feeds a sequence of 16-word blocks (the last padded
// with zero words beyond lastBlockLen bytes) through one BLAKE3 chunk and
// returns its 256-bit output as the eight chaining-value words.
func blake3CompressChunk(api frontend.API, blocks [][16]frontend.Variable, lastBlockLen int) [8]frontend.Variable {
	cv := blake3IV
	n := len(blocks)
	for i, block := range blocks {
		flags := 0
		if i == 0 {
			flags |= blake3FlagChunkStart
		}
		blockLen := 64
		if i == n-1 {
			flags |= blake3FlagChunkEnd | blake3FlagRoot
			blockLen = lastBlockLen
		}
		cv = blake3Compress(api, cv, block, blockLen, flags)
	}
	return cv
}

// blake3Field pairs a circuit value with the byte width and encoding it
// should contribute to a BLAKE3 message stream, mirroring one argument of a
// internal/hashing.H(parts ...[]byte) call.
type blake3Field struct {
	v        frontend.Variable
	numBytes int
	// hashType is true for a 32-byte hash/commitment/key value, assigned as
	// the big-endian integer produced by (*big.Int).SetBytes on its raw
	// bytes — the idiomatic gnark witness convention for a byte array.
	// false for a small plain numeric value (an amount or index) assigned
	// directly as its numeric value, matching how c.Amount is already used
	// in this circuit's arithmetic constraints.
	hashType bool
}

func hashField(v frontend.Variable) blake3Field { return blake3Field{v: v, numBytes: 32, hashType: true} }
func numField(v frontend.Variable, numBytes int) blake3Field {
	return blake3Field{v: v, numBytes: numBytes, hashType: false}
}

// blake3HashWords decomposes a 32-byte big-endian-assigned value into eight
// BLAKE3 message words (each the little-endian uint32 of four consecutive
// message bytes). ToBinary is LSB-first, so byte i (i=0 most significant)
// lives at bits[(31-i)*8 : (31-i)*8+8]; each word reassembles its four bytes
// in ascending byte order via FromBinary, which is itself LSB-first — this
// is a pure bit relabelling, no extra constraints beyond the one ToBinary.
func blake3HashWords(api frontend.API, v frontend.Variable) [8]frontend.Variable {
	bits := api.ToBinary(v, 256)
	byteBits := func(i int) []frontend.Variable {
		lo := (31 - i) * 8
		return bits[lo : lo+8]
	}
	var words [8]frontend.Variable
	for m := 0; m < 8; m++ {
		wordBits := make([]frontend.Variable, 0, 32)
		wordBits = append(wordBits, byteBits(4*m)...)
		wordBits = append(wordBits, byteBits(4*m+1)...)
		wordBits = append(wordBits, byteBits(4*m+2)...)
		wordBits = append(wordBits, byteBits(4*m+3)...)
		words[m] = api.FromBinary(wordBits...)
	}
	return words
}

// blake3NumWords decomposes a plain numeric value into numBytes/4 BLAKE3
// message words. A numeric value's bits are already in the same order as
// its little-endian byte encoding, so each word is a contiguous 32-bit slice
// with no byte reordering.
func blake3NumWords(api frontend.API, v frontend.Variable, numBytes int) []frontend.Variable {
	bits := api.ToBinary(v, numBytes*8)
	words := make([]frontend.Variable, numBytes/4)
	for m := range words {
		words[m] = api.FromBinary(bits[32*m : 32*m+32]...)
	}
	return words
}

// blake3WordsToVariable is the inverse of blake3HashWords: it reassembles
// eight little-endian BLAKE3 output words into the same big-endian integer
// convention used for every Hash-typed circuit input, so a hash produced by
// blake3Hash can be compared directly against Root/Nullifier/OutputsHash.
func blake3WordsToVariable(api frontend.API, words [8]frontend.Variable) frontend.Variable {
	const two32 = 1 << 32
	acc := byteSwap32(api, words[0])
	for m := 1; m < 8; m++ {
		acc = api.Add(api.Mul(acc, two32), byteSwap32(api, words[m]))
	}
	return acc
}

// byteSwap32 reverses the byte order of a 32-bit little-endian word,
// turning a BLAKE3 output word into the big-endian group blake3WordsToVariable
// composes into the final 256-bit value.
func byteSwap32(api frontend.API, w frontend.Variable) frontend.Variable {
	bits := api.ToBinary(w, 32)
	swapped := make([]frontend.Variable, 0, 32)
	swapped = append(swapped, bits[24:32]...)
	swapped = append(swapped, bits[16:24]...)
	swapped = append(swapped, bits[8:16]...)
	swapped = append(swapped, bits[0:8]...)
	return api.FromBinary(swapped...)
}

// blake3Hash is the in-circuit equivalent of internal/hashing.H: it hashes
// the concatenation of fields, in order, with no separators.
func blake3Hash(api frontend.API, fields ...blake3Field) frontend.Variable {
	var words []frontend.Variable
	totalBytes := 0
	for _, f := range fields {
		totalBytes += f.numBytes
		if f.hashType {
			w := blake3HashWords(api, f.v)
			words = append(words, w[:]...)
		} else {
			words = append(words, blake3NumWords(api, f.v, f.numBytes)...)
		}
	}

	zero := frontend.Variable(0)
	for len(words)%16 != 0 {
		words = append(words, zero)
	}

	numBlocks := len(words) / 16
	lastBlockLen := totalBytes - 64*(numBlocks-1)

	blocks := make([][16]frontend.Variable, numBlocks)
	for i := range blocks {
		copy(blocks[i][:], words[i*16:i*16+16])
	}

	cv := blake3CompressChunk(api, blocks, lastBlockLen)
	return blake3WordsToVariable(api, cv)
}

// blake3FieldHasher adapts blake3Hash to gnark's std/accumulator/merkle
// hash.FieldHasher interface (Write/Sum/Reset), for use as the Merkle
// proof's internal-node hasher. Every Write call there buffers exactly the
// two sibling 32-byte node hashes of one tree level (mirroring
// internal/hashing.HashPair), so every buffered value is safely treated as
// a 32-byte hash-typed field.
type blake3FieldHasher struct {
	api frontend.API
	buf []frontend.Variable
}

func newBlake3FieldHasher(api frontend.API) *blake3FieldHasher {
	return &blake3FieldHasher{api: api}
}

func (h *blake3FieldHasher) Write(data ...frontend.Variable) {
	h.buf = append(h.buf, data...)
}

func (h *blake3FieldHasher) Sum() frontend.Variable {
	fields := make([]blake3Field, len(h.buf))
	for i, v := range h.buf {
		fields[i] = hashField(v)
	}
	return blake3Hash(h.api, fields...)
}

func (h *blake3FieldHasher) Reset() {
	h.buf = nil
}
