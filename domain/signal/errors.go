package signal

import "errors"

// ErrPodConflict reports that a conditional pod assignment lost a race: at
// least one candidate entry was already claimed by a concurrent matcher. The
// whole assignment is rolled back and the matcher treats it as "no pod this
// round".
var ErrPodConflict = errors.New("pod candidates already assigned")
