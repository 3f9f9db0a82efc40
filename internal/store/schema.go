package store

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- PROGRAM TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS program SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON program TYPE string;
    DEFINE FIELD IF NOT EXISTS slug ON program TYPE string;
    -- Canonical setup JSON; re-emitting from it reproduces text exactly
    DEFINE FIELD IF NOT EXISTS setup ON program TYPE string;
    DEFINE FIELD IF NOT EXISTS text ON program TYPE string;
    DEFINE FIELD IF NOT EXISTS model ON program TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS revision ON program TYPE int DEFAULT 1;
    DEFINE FIELD IF NOT EXISTS op_count ON program TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS material ON program TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS shape ON program TYPE string;
    DEFINE FIELD IF NOT EXISTS created ON program TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON program TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS program_slug ON program FIELDS slug UNIQUE;
    DEFINE INDEX IF NOT EXISTS program_updated ON program FIELDS updated;
    DEFINE ANALYZER IF NOT EXISTS program_analyzer TOKENIZERS class FILTERS lowercase, ascii;
    DEFINE INDEX IF NOT EXISTS program_name_ft ON program FIELDS name FULLTEXT ANALYZER program_analyzer BM25;

    -- ==========================================================================
    -- SESSION TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS session SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS prompts ON session TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS setup ON session TYPE string;
    DEFINE FIELD IF NOT EXISTS revision ON session TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS program ON session TYPE option<record<program>>;
    DEFINE FIELD IF NOT EXISTS created ON session TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON session TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS session_updated ON session FIELDS updated;
`
