package chardata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcrodman/archon/internal/serial"
)

func TestInvItemSize(t *testing.T) {
	w := serial.NewWriter()
	InvItem{}.Encode(w)
	require.Equal(t, InvItemSize, w.Len())
	require.Equal(t, 28, w.Len())
}

func TestBankItemSize(t *testing.T) {
	w := serial.NewWriter()
	BankItem{}.Encode(w)
	require.Equal(t, BankItemSize, w.Len())
	require.Equal(t, 24, w.Len())
}

func TestInventorySize(t *testing.T) {
	w := serial.NewWriter()
	Inventory{}.Encode(w)
	require.Equal(t, InventorySize, w.Len())
	require.Equal(t, 4+30*28, w.Len())
}

func TestItemBankSize(t *testing.T) {
	w := serial.NewWriter()
	ItemBank{}.Encode(w)
	require.Equal(t, ItemBankSize, w.Len())
	require.Equal(t, 8+200*24, w.Len())
}

func TestBbCharSize(t *testing.T) {
	w := serial.NewWriter()
	BbChar{}.Encode(w)
	require.Equal(t, BbCharSize, w.Len())
	require.Equal(t, 400, w.Len())
}

func TestBbTeamAndKeyDataSize(t *testing.T) {
	w := serial.NewWriter()
	BbTeamAndKeyData{}.Encode(w)
	require.Equal(t, BbTeamAndKeyDataSize, w.Len())
	require.Equal(t, 0xAF0, w.Len())
}

func TestBbFullCharDataSize(t *testing.T) {
	w := serial.NewWriter()
	BbFullCharData{}.Encode(w)
	require.Equal(t, BbFullCharDataSize, w.Len())
	require.Equal(t, 0x3994, w.Len())
}

func TestInvItemRoundTrip(t *testing.T) {
	item := InvItem{
		Data:      [12]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		ItemID:    99,
		Data2:     [6]byte{1, 2, 3, 4, 5, 6},
		BankFlags: 7,
		Tech:      3,
		Equipped:  1,
	}
	w := serial.NewWriter()
	item.Encode(w)
	r := serial.NewReader(w.Bytes())
	require.Equal(t, item, DecodeInvItem(r))
}

func TestBbFullCharDataRoundTrip(t *testing.T) {
	var c BbFullCharData
	c.Character.Level = 5
	c.Character.Name[0] = 'N'
	c.Inventory.ItemCount = 2
	c.Inventory.Items[0].ItemID = 1
	c.Bank.Meseta = 1000

	w := serial.NewWriter()
	c.Encode(w)
	require.Equal(t, BbFullCharDataSize, w.Len())

	r := serial.NewReader(w.Bytes())
	got := DecodeBbFullCharData(r)
	require.Equal(t, c, got)
}

func TestDefaultInventoryHunter(t *testing.T) {
	inv := DefaultInventory(ClassHUmar, 0, 0x1234)
	require.EqualValues(t, 4, inv.ItemCount)
	require.Equal(t, starterSaber, inv.Items[0].Data)
	require.Equal(t, uint8(1), inv.Items[0].Equipped)
	require.Equal(t, starterFrame, inv.Items[1].Data)
}

func TestDefaultInventoryForceIncludesTechAndMonofluid(t *testing.T) {
	inv := DefaultInventory(ClassFOnewearl, 0, 0x5678)
	require.EqualValues(t, 6, inv.ItemCount)
	require.Equal(t, starterCane, inv.Items[0].Data)
	require.Equal(t, starterMonofluid, inv.Items[4].Data)
	require.Equal(t, uint8(0x00), inv.Items[5].Tech)
}

func TestDefaultInventoryCastUsesSkinForMagColor(t *testing.T) {
	inv := DefaultInventory(ClassHUcast, 0x42, 0x99)
	mag := inv.Items[2].Data
	require.Equal(t, byte(0x42), mag[2])
}
