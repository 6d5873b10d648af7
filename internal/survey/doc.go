// Package survey coordinates the end-to-end listening-test workflow.
//
// Create discovers audio, partitions it into forms, synthesizes dummy clips,
// uploads every form asset under its ciphered name, renders the survey
// documents and records the result in the manifest. Publish submits one HIT
// per form after the caller has confirmed the cost. Status and Results read
// back from the marketplace; Results maps each answer to the role that was
// shown in the chosen position.
//
// Keep orchestration here: the individual steps live in their own packages
// and this package only sequences them, classifies failures and logs.
package survey
