package demtile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	archivesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_archives_extracted_total",
		Help: "The total number of archives extracted",
	})
	archiveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_archive_failures_total",
		Help: "The total number of archives that could not be extracted",
	})
	bytesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_bytes_extracted_total",
		Help: "The total number of bytes written while extracting archives",
	})
	filesOrganized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_files_organized_total",
		Help: "The total number of files moved into tile directories",
	})
	filesUnparseable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_files_unparseable_total",
		Help: "The total number of marker files without a coordinate",
	})
	destinationCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_destination_collisions_total",
		Help: "The total number of destination files that were overwritten",
	})
	filesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_files_deleted_total",
		Help: "The total number of non-marker files deleted",
	})
	dirsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_dirs_removed_total",
		Help: "The total number of empty directories removed",
	})
	verifyWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_verify_warnings_total",
		Help: "The total number of GeoTIFF headers that did not match their filename",
	})
	tileDirCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_tile_dir_cache_hits_total",
		Help: "The total number of hits on the tile directory cache",
	})
	tileDirCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_tile_dir_cache_misses_total",
		Help: "The total number of misses on the tile directory cache",
	})
	headerCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_header_cache_hits_total",
		Help: "The total number of hits on the GeoTIFF header cache",
	})
	headerCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_header_cache_misses_total",
		Help: "The total number of misses on the GeoTIFF header cache",
	})
	headerCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demtile_header_cache_evictions_total",
		Help: "The total number of evictions from the GeoTIFF header cache",
	})
)
