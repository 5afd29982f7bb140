package db

const schema = `
CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uri TEXT NOT NULL UNIQUE
);

-- Downscaled sizes actually clustered
CREATE TABLE IF NOT EXISTS image_sizes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    image_id INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE,
    UNIQUE(image_id, width, height)
);

-- Clustering parameters other than K
CREATE TABLE IF NOT EXISTS run_params (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    color_space TEXT NOT NULL,
    scale REAL NOT NULL,
    seed INTEGER NOT NULL,
    max_iterations INTEGER NOT NULL,
    UNIQUE(color_space, scale, seed, max_iterations)
);

CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    image_size_id INTEGER NOT NULL,
    run_param_id INTEGER NOT NULL,
    k INTEGER NOT NULL,

    sse REAL NOT NULL,
    iterations INTEGER NOT NULL,
    converged BOOLEAN NOT NULL,
    empty_clusters INTEGER NOT NULL,
    duration_ms REAL NOT NULL,
    labels BLOB,

    FOREIGN KEY (image_size_id) REFERENCES image_sizes(id) ON DELETE CASCADE,
    FOREIGN KEY (run_param_id) REFERENCES run_params(id) ON DELETE CASCADE,
    UNIQUE(image_size_id, run_param_id, k)
);

CREATE INDEX IF NOT EXISTS idx_results_k ON results(k);
CREATE INDEX IF NOT EXISTS idx_results_converged ON results(converged);
CREATE INDEX IF NOT EXISTS idx_image_sizes_image ON image_sizes(image_id);
CREATE INDEX IF NOT EXISTS idx_run_params_space ON run_params(color_space);

CREATE VIEW IF NOT EXISTS results_detailed AS
SELECT
    r.id,

    i.uri as image_uri,
    isz.id as image_size_id,
    isz.width,
    isz.height,

    rp.color_space,
    rp.scale,
    rp.seed,
    rp.max_iterations,

    r.k,
    r.sse,
    r.sse / (isz.width * isz.height) as sse_per_pixel,
    r.iterations,
    r.converged,
    r.empty_clusters,
    r.duration_ms
FROM results r
JOIN image_sizes isz ON r.image_size_id = isz.id
JOIN images i ON isz.image_id = i.id
JOIN run_params rp ON r.run_param_id = rp.id;
`
