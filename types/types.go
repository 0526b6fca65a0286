package types

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/0xPolygon/polygon-zenith/helper/hex"
	"github.com/0xPolygon/polygon-zenith/helper/keccak"
)

const (
	HashLength    = 32
	AddressLength = 20
)

var (
	// ZeroAddress is the default zero address
	ZeroAddress = Address{}

	// ZeroHash is the default zero hash
	ZeroHash = Hash{}

	// EmptyRootHash is the root when there are no transactions
	EmptyRootHash = StringToHash("0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")
)

type Hash [HashLength]byte

type Address [AddressLength]byte

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}

func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	min := min(size, HashLength)

	copy(h[HashLength-min:], b[len(b)-min:])

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

// EIP55 returns the checksummed hex representation of the address
func (a Address) EIP55() string {
	addr := strings.ToLower(hex.EncodeToString(a[:]))
	hash := keccak.Keccak256(nil, []byte(addr))

	result := make([]rune, len(addr))

	for i, c := range addr {
		if unicode.IsLetter(c) {
			// the i-th nibble of the hash decides the case of the i-th character
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}

			if nibble&0xf >= 8 {
				c = unicode.ToUpper(c)
			}
		}

		result[i] = c
	}

	return "0x" + string(result)
}

func (a Address) String() string {
	return a.EIP55()
}

func (a Address) Bytes() []byte {
	return a[:]
}

func StringToHash(str string) Hash {
	return BytesToHash(StringToBytes(str))
}

func StringToAddress(str string) Address {
	return BytesToAddress(StringToBytes(str))
}

func BytesToAddress(b []byte) Address {
	var a Address

	size := len(b)
	min := min(size, AddressLength)

	copy(a[AddressLength-min:], b[len(b)-min:])

	return a
}

// IsValidAddress checks if provided string is a valid Ethereum address
func IsValidAddress(address string) (Address, error) {
	buf, err := hex.DecodeHex(address)
	if err != nil {
		return ZeroAddress, err
	}

	if len(buf) != AddressLength {
		return ZeroAddress, fmt.Errorf("address %s has invalid length %d", address, len(buf))
	}

	return BytesToAddress(buf), nil
}

func StringToBytes(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	b, _ := hex.DecodeString(str)

	return b
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	*h = BytesToHash(StringToBytes(string(input)))

	return nil
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	buf := StringToBytes(string(input))
	if len(buf) != AddressLength {
		return fmt.Errorf("incorrect length")
	}

	*a = BytesToAddress(buf)

	return nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// HexBytes marshals/unmarshals as a JSON string with 0x prefix.
type HexBytes []byte

func (h HexBytes) String() string {
	return hex.EncodeToHex(h)
}

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HexBytes) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	*h = buf

	return nil
}

// Big returns the hash interpreted as a big endian unsigned integer
func (h Hash) Big() *big.Int {
	return new(big.Int).SetBytes(h[:])
}

// BigToHash left pads the big endian bytes of b into a hash
func BigToHash(b *big.Int) Hash {
	return BytesToHash(b.Bytes())
}
