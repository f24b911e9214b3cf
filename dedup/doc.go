/*Package dedup removes PCR and optical duplicates from aligned,
  UMI-annotated, name-grouped SAM input.

  Duplicate Detection Concepts:

  Reads sharing a qname (both mates of a pair, plus multi-mapped
  alignments) form a ReadGroup. Two ReadGroups are duplicate
  candidates when their location keys match: per read, the reference
  name, the soft-clip and 5'-trim corrected synthetic fragment start,
  and the strand. Soft clipping is added back outside the alignment;
  the 5' trim recorded by the upstream annotation step shifts the
  start upstream on the forward strand and into the alignment on the
  reverse strand. Hard-clipped reads carry no way to recover the
  fragment boundary and are excluded from candidacy.

  Candidates at one location are then partitioned by their annotated
  UMI pair. A partition holding more than one ReadGroup is a duplicate
  group: its members are copies of one original fragment. One member
  is kept (chosen uniformly at random with a seeded generator, so
  reruns agree) and the rest become losers.

  UMIs that do not match the kit's known set are classified by
  Hamming distance. The per-mate findings are attached as d1/d2 (the
  distance), n1/n2 (how many known UMIs sit at that distance), and,
  when unambiguous, c1/c2 (the single known UMI at distance one) tags
  on the output records. Such groups are either rejected to a
  separate stream (default) or kept, optionally with the unambiguous
  correction applied before partitioning.

  Three passes run over two scans of the input: ingestion builds the
  ReadGroup and location stores in batched transactions, resolution
  partitions co-located groups and records losers, and reconciliation
  re-reads the input to write the output SAM streams (deduplicated,
  duplicate-flagged, duplicates-only, UMI-error rejects) plus the
  duplicate-group listing and a textual report.

  Storage is pluggable: an in-memory backend for small inputs, and a
  durable embedded database whose batched transactions keep memory
  bounded on large ones.
*/
package dedup
