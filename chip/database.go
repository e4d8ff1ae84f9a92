package chip

import "fmt"

// Database is an immutable, process-wide map from JEDEC ID to Descriptor.
// The embedded static table is built at init time from staticChips (the
// hand-authored equivalent of the spec's build-time code generator output,
// §1); LoadSupplementaryDatabase (database_toml.go) loads additional
// entries at runtime from the text format of §6.3, and Merged combines
// them with the static table.
type Database struct {
	byID   map[uint32]*Descriptor
	byName map[string]*Descriptor
	all    []*Descriptor
}

func newDatabase() *Database {
	return &Database{
		byID:   make(map[uint32]*Descriptor),
		byName: make(map[string]*Descriptor),
	}
}

// Add inserts d into the database. Returns an error if the JEDEC ID or
// name already exists — the database never silently shadows an entry.
func (db *Database) Add(d *Descriptor) error {
	id := d.JedecID()
	if _, exists := db.byID[id]; exists {
		return fmt.Errorf("chip database: duplicate JEDEC ID 0x%06X (%s)", id, d.Name)
	}
	if _, exists := db.byName[d.Name]; exists {
		return fmt.Errorf("chip database: duplicate chip name %q", d.Name)
	}
	db.byID[id] = d
	db.byName[d.Name] = d
	db.all = append(db.all, d)
	return nil
}

// FindByJedecID looks up a chip by its 24-bit JEDEC ID.
func (db *Database) FindByJedecID(mfg byte, dev uint16) (*Descriptor, bool) {
	id := uint32(mfg)<<16 | uint32(dev)
	d, ok := db.byID[id]
	return d, ok
}

// FindByName looks up a chip by its exact model name.
func (db *Database) FindByName(name string) (*Descriptor, bool) {
	d, ok := db.byName[name]
	return d, ok
}

// All returns every descriptor in the database, in insertion order.
func (db *Database) All() []*Descriptor { return db.all }

// Len reports the number of chips in the database.
func (db *Database) Len() int { return len(db.all) }

var static = buildStaticDatabase()

func buildStaticDatabase() *Database {
	db := newDatabase()
	for _, d := range staticChips {
		d := d
		if err := db.Add(&d); err != nil {
			// A duplicate in the embedded table is a programming error,
			// not a runtime condition a caller can react to.
			panic(err)
		}
	}
	return db
}

// StaticDatabase returns the process-wide immutable chip database built
// from the embedded table. Callers needing supplementary chips should use
// Merged instead.
func StaticDatabase() *Database { return static }

// Merged returns a new Database containing every chip in StaticDatabase()
// plus extra. A JEDEC ID or name collision between extra and the static
// table is a load error — supplementary entries never silently override
// the built-in table (§3 ChipDatabase).
func Merged(extra []*Descriptor) (*Database, error) {
	db := newDatabase()
	for _, d := range static.All() {
		if err := db.Add(d); err != nil {
			return nil, err
		}
	}
	for _, d := range extra {
		d := d
		if err := db.Add(d); err != nil {
			return nil, err
		}
	}
	return db, nil
}
