// Package schema declares the fixed set of player-statistic fields. The
// field name doubles as the storage column name; order matters only for
// display.
package schema

// Kind is the declared value kind of a field.
type Kind int

const (
	KindInt Kind = iota
	KindDate
	KindString
)

// Field describes one canonical statistic column.
type Field struct {
	Name string
	Kind Kind

	// Correction bounds, inclusive. Only meaningful for KindInt.
	Min int64
	Max int64
}

const (
	guildStatMax = 9999
	generalMax   = 99999999
)

// Fields is the ordered set of stat columns, matching the playerstats table
// layout after the identity columns.
var Fields = []Field{
	{Name: "level", Kind: KindInt, Min: 1, Max: 250},
	{Name: "ascensionlevel", Kind: KindInt, Max: generalMax},
	{Name: "kingdom", Kind: KindString},
	{Name: "datecreated", Kind: KindDate},
	{Name: "playtime", Kind: KindInt, Max: generalMax},
	{Name: "travelersguild", Kind: KindInt, Max: guildStatMax},
	{Name: "anglersguild", Kind: KindInt, Max: guildStatMax},
	{Name: "circleofanguish", Kind: KindInt, Max: guildStatMax},
	{Name: "titanfelledguild", Kind: KindInt, Max: guildStatMax},
	{Name: "bladesoffinesse", Kind: KindInt, Max: guildStatMax},
	{Name: "spelunkingguild", Kind: KindInt, Max: guildStatMax},
	{Name: "seersguild", Kind: KindInt, Max: guildStatMax},
	{Name: "monumentalguild", Kind: KindInt, Max: guildStatMax},
	{Name: "globalrank", Kind: KindInt, Max: generalMax},
	{Name: "regionalrank", Kind: KindInt, Max: generalMax},
	{Name: "competitiverank", Kind: KindInt, Max: generalMax},
	{Name: "monstersslain", Kind: KindInt, Max: generalMax},
	{Name: "bossesslain", Kind: KindInt, Max: generalMax},
	{Name: "playersdefeated", Kind: KindInt, Max: generalMax},
	{Name: "questscompleted", Kind: KindInt, Max: generalMax},
	{Name: "areasexplored", Kind: KindInt, Max: generalMax},
	{Name: "areastaken", Kind: KindInt, Max: generalMax},
	{Name: "dungeonscleared", Kind: KindInt, Max: generalMax},
	{Name: "coliseumwins", Kind: KindInt, Max: generalMax},
	{Name: "itemsupgraded", Kind: KindInt, Max: generalMax},
	{Name: "fishcaught", Kind: KindInt, Max: generalMax},
	{Name: "distancetravelled", Kind: KindInt, Max: generalMax},
	{Name: "reputation", Kind: KindInt, Max: generalMax},
	{Name: "endlessrecord", Kind: KindInt, Max: guildStatMax},
	{Name: "entriescompleted", Kind: KindInt, Max: generalMax},
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// Lookup returns the field with the given name.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// Names returns the ordered field names.
func Names() []string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = f.Name
	}
	return names
}

// Columns returns the full playerstats column list in table order, identity
// columns first.
func Columns() []string {
	cols := []string{"id", "guildid", "discordid", "timestamp", "playername"}
	return append(cols, Names()...)
}
