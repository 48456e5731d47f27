// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

/*
Package reconcile decides, for every known plugin identity, which candidate
manifest is authoritative and emits one canonical manifest per distribution
channel.

Identities on the repository allow-list are resolved against both sources;
the version comparator arbitrates when both yield a candidate, with the
repository winning ties and incomparable versions. Identities discovered only
in local storage pass through as-is. Remote lookups run in bounded parallel
workers; results are merged positionally so the output order is deterministic
regardless of scheduling.
*/
package reconcile
