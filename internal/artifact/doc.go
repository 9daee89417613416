// Package artifact classifies the files a converter backend leaves next to a
// source asset. One asset may produce a single image, a six-face cubemap, a
// numbered frame sequence, or a stack of depth slices; [Classify] names which
// one a file is and [ExpandGroup] collects the rest of its group.
package artifact
